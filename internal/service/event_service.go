package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/daycare-api/internal/models"
	"github.com/noah-isme/daycare-api/pkg/jobs"
)

// Update event types published to the broker.
const (
	EventStatusChanged     = "status"
	EventSickReported      = "sick"
	EventVacationSet       = "vacation"
	EventSleepLogged       = "sleep"
	EventDaySummaryChanged = "day_summary"
)

// EventPublisher delivers an encoded event to a broker topic.
type EventPublisher interface {
	Publish(topic string, payload []byte) error
}

// UpdateEvent notifies subscribers that a child's day or a group's day summary changed.
type UpdateEvent struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	ChildID    string             `json:"childId,omitempty"`
	Group      string             `json:"group,omitempty"`
	DateID     string             `json:"dateId,omitempty"`
	Status     models.ChildStatus `json:"status,omitempty"`
	ActorID    string             `json:"actorId,omitempty"`
	OccurredAt time.Time          `json:"occurredAt"`
}

// EventServiceConfig configures the publish queue.
type EventServiceConfig struct {
	TopicPrefix string
	Workers     int
	MaxRetries  int
	RetryDelay  time.Duration
}

// EventService publishes update events asynchronously with retries.
type EventService struct {
	publisher EventPublisher
	queue     *jobs.Queue
	prefix    string
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewEventService builds the service. A nil publisher turns every call into a no-op.
func NewEventService(publisher EventPublisher, cfg EventServiceConfig, metrics *MetricsService, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix := cfg.TopicPrefix
	if prefix == "" {
		prefix = "daycare"
	}
	svc := &EventService{publisher: publisher, prefix: prefix, metrics: metrics, logger: logger}
	if publisher != nil {
		svc.queue = jobs.NewQueue("events", svc.handle, jobs.QueueConfig{
			Workers:    cfg.Workers,
			BufferSize: 256,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			JobTimeout: 10 * time.Second,
			Logger:     logger,
		})
	}
	return svc
}

// Enabled reports whether events reach a broker.
func (s *EventService) Enabled() bool {
	return s != nil && s.queue != nil
}

// Start launches the publish workers.
func (s *EventService) Start(ctx context.Context) {
	if s.Enabled() {
		s.queue.Start(ctx)
	}
}

// Stop drains the workers.
func (s *EventService) Stop() {
	if s.Enabled() {
		s.queue.Stop()
	}
}

// Publish enqueues evt. Failures are logged and never reach the caller's response.
func (s *EventService) Publish(evt UpdateEvent) {
	if !s.Enabled() {
		return
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	if err := s.queue.Enqueue(jobs.Job{ID: evt.ID, Type: evt.Type, Payload: evt}); err != nil {
		s.metrics.RecordEventPublish(evt.Type, err)
		s.logger.Warn("failed to enqueue update event", zap.String("type", evt.Type), zap.String("child_id", evt.ChildID), zap.Error(err))
	}
}

// Topic returns the broker topic for evt.
func (s *EventService) Topic(evt UpdateEvent) string {
	if evt.Type == EventDaySummaryChanged {
		return fmt.Sprintf("%s/groups/%s/day-summary", s.prefix, evt.Group)
	}
	return fmt.Sprintf("%s/children/%s/updates", s.prefix, evt.ChildID)
}

func (s *EventService) handle(ctx context.Context, job jobs.Job) error {
	evt, ok := job.Payload.(UpdateEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", job.Payload)
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err = s.publisher.Publish(s.Topic(evt), payload)
	s.metrics.RecordEventPublish(evt.Type, err)
	return err
}
