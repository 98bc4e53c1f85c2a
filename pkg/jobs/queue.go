package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned by Enqueue when the buffer has no free slot.
	ErrQueueFull = errors.New("queue full")
	// ErrNotRunning is returned by Enqueue before Start and after Stop.
	ErrNotRunning = errors.New("queue not running")
)

// Job is one unit of background work.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Enqueued time.Time
}

// Handler processes a job. A returned error schedules a retry.
type Handler func(context.Context, Job) error

// QueueConfig configures the worker pool.
type QueueConfig struct {
	Workers    int
	BufferSize int
	// MaxRetries is the number of attempts after the first failure.
	MaxRetries int
	// RetryDelay is the first backoff. It doubles per attempt up to MaxDelay.
	RetryDelay time.Duration
	MaxDelay   time.Duration
	// JobTimeout bounds a single handler invocation. Zero means no limit.
	JobTimeout time.Duration
	Logger     *zap.Logger
}

// Stats counts finished jobs.
type Stats struct {
	Processed uint64
	Failed    uint64
	Pending   int
}

type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// Queue is a bounded in-memory job dispatcher. Enqueue never blocks.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger

	jobs   chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
	state  state

	processed atomic.Uint64
	failed    atomic.Uint64
}

// NewQueue builds a queue that runs handler for every job.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.MaxDelay < cfg.RetryDelay {
		cfg.MaxDelay = 30 * cfg.RetryDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger.With(zap.String("queue", name)),
		jobs:    make(chan Job, cfg.BufferSize),
	}
}

// Start launches the workers. Only the first call has an effect.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state != stateIdle {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.state = stateRunning
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop refuses new jobs, lets the workers finish what is buffered and waits
// for them. Retry backoff is cut short once the parent context is done.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.state != stateRunning {
		q.mu.Unlock()
		return
	}
	q.state = stateStopped
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	q.cancel()
	q.logger.Info("queue stopped",
		zap.Uint64("processed", q.processed.Load()),
		zap.Uint64("failed", q.failed.Load()))
}

// Enqueue buffers job for the workers.
func (q *Queue) Enqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.state != stateRunning {
		return fmt.Errorf("queue %s: %w", q.name, ErrNotRunning)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueFull)
	}
}

// Stats reports finished and buffered job counts.
func (q *Queue) Stats() Stats {
	return Stats{
		Processed: q.processed.Load(),
		Failed:    q.failed.Load(),
		Pending:   len(q.jobs),
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for job := range q.jobs {
		q.process(job)
	}
}

func (q *Queue) process(job Job) {
	delay := q.cfg.RetryDelay
	for attempt := 1; ; attempt++ {
		err := q.run(job)
		if err == nil {
			q.processed.Add(1)
			return
		}
		if attempt > q.cfg.MaxRetries || q.ctx.Err() != nil {
			q.failed.Add(1)
			q.logger.Error("job failed",
				zap.String("job_id", job.ID),
				zap.String("type", job.Type),
				zap.Int("attempts", attempt),
				zap.Error(err))
			return
		}
		q.logger.Warn("job failed, retrying",
			zap.String("job_id", job.ID),
			zap.String("type", job.Type),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-q.ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
		if delay *= 2; delay > q.cfg.MaxDelay {
			delay = q.cfg.MaxDelay
		}
	}
}

func (q *Queue) run(job Job) error {
	if q.cfg.JobTimeout <= 0 {
		return q.handler(q.ctx, job)
	}
	ctx, cancel := context.WithTimeout(q.ctx, q.cfg.JobTimeout)
	defer cancel()
	return q.handler(ctx, job)
}
