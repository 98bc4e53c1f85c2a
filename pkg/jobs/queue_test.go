package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var handled atomic.Int32
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		handled.Add(1)
		return nil
	}, QueueConfig{Workers: 2, BufferSize: 4})
	q.Start(context.Background())

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(Job{ID: "job", Type: "status"}))
	}
	q.Stop()

	assert.Equal(t, int32(3), handled.Load())
	assert.Equal(t, Stats{Processed: 3}, q.Stats())
}

func TestQueueRetriesWithBackoff(t *testing.T) {
	var attempts atomic.Int32
	q := NewQueue("retry", func(ctx context.Context, job Job) error {
		if attempts.Add(1) < 3 {
			return errors.New("broker unavailable")
		}
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 3, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "sick"}))
	q.Stop()

	assert.Equal(t, int32(3), attempts.Load())
	assert.EqualValues(t, 1, q.Stats().Processed)
}

func TestQueueGivesUpAfterRetries(t *testing.T) {
	var attempts atomic.Int32
	q := NewQueue("give-up", func(ctx context.Context, job Job) error {
		attempts.Add(1)
		return errors.New("rejected")
	}, QueueConfig{Workers: 1, MaxRetries: 2, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "job-1"}))
	q.Stop()

	assert.Equal(t, int32(3), attempts.Load())
	assert.EqualValues(t, 1, q.Stats().Failed)
}

func TestQueueCancelledContextSkipsBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewQueue("cancel", func(ctx context.Context, job Job) error {
		return errors.New("down")
	}, QueueConfig{Workers: 1, MaxRetries: 5, RetryDelay: time.Hour})
	q.Start(ctx)
	require.NoError(t, q.Enqueue(Job{ID: "job-1"}))

	cancel()
	done := make(chan struct{})
	go func() {
		q.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stop waited for backoff")
	}
	assert.EqualValues(t, 1, q.Stats().Failed)
}

func TestQueueRejectsWhenNotRunning(t *testing.T) {
	q := NewQueue("idle", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	assert.ErrorIs(t, q.Enqueue(Job{ID: "x"}), ErrNotRunning)

	q.Start(context.Background())
	q.Stop()
	q.Stop()
	assert.ErrorIs(t, q.Enqueue(Job{ID: "x"}), ErrNotRunning)
}

func TestQueueFullDoesNotBlock(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("full", func(ctx context.Context, job Job) error {
		<-block
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	var full error
	for i := 0; i < 4 && full == nil; i++ {
		full = q.Enqueue(Job{ID: "x"})
	}
	assert.ErrorIs(t, full, ErrQueueFull)
}
