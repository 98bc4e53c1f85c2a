package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/daycare-api/internal/dayview"
	"github.com/noah-isme/daycare-api/internal/dto"
	"github.com/noah-isme/daycare-api/internal/models"
	appErrors "github.com/noah-isme/daycare-api/pkg/errors"
)

type attendanceStore interface {
	UpdateStatus(ctx context.Context, entry *models.Checkin) error
	SetSick(ctx context.Context, id, dateID, reason string, at time.Time) error
	ClearSick(ctx context.Context, id string, at time.Time) error
	SetVacation(ctx context.Context, id string, from, to time.Time, at time.Time) error
	ClearVacation(ctx context.Context, id string, at time.Time) error
	StartSleep(ctx context.Context, id, dateID string, at time.Time) error
	EndSleep(ctx context.Context, id string, at time.Time) error
	SetSleepPlan(ctx context.Context, id string, planned bool, minutes *int) error
	SetDayReminder(ctx context.Context, id, reminder string) error
	SetPhoto(ctx context.Context, id, dataURL string) error
	ListCheckins(ctx context.Context, childID string, limit int) ([]models.Checkin, error)
}

type childAuthorizer interface {
	Authorize(ctx context.Context, id string, claims *models.JWTClaims) (*models.Child, error)
}

// AttendanceServiceConfig tunes attendance writes.
type AttendanceServiceConfig struct {
	Location      *time.Location
	PhotoMaxBytes int
	Now           func() time.Time
}

// AttendanceService records everything staff and parents change on a child's day.
type AttendanceService struct {
	store     attendanceStore
	children  childAuthorizer
	events    *EventService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	loc       *time.Location
	maxPhoto  int
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(store attendanceStore, children childAuthorizer, events *EventService, metrics *MetricsService, cfg AttendanceServiceConfig, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &AttendanceService{
		store:     store,
		children:  children,
		events:    events,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		loc:       loc,
		maxPhoto:  cfg.PhotoMaxBytes,
		now:       now,
	}
}

// CheckIn marks the child delivered.
func (s *AttendanceService) CheckIn(ctx context.Context, childID string, actor *models.JWTClaims) (*models.Checkin, error) {
	return s.changeStatus(ctx, childID, models.CheckinActionCheckin, models.ChildStatusDelivered, actor)
}

// CheckOut marks the child picked up.
func (s *AttendanceService) CheckOut(ctx context.Context, childID string, actor *models.JWTClaims) (*models.Checkin, error) {
	return s.changeStatus(ctx, childID, models.CheckinActionCheckout, models.ChildStatusPickedUp, actor)
}

func (s *AttendanceService) changeStatus(ctx context.Context, childID string, action models.CheckinAction, status models.ChildStatus, actor *models.JWTClaims) (*models.Checkin, error) {
	if err := ensureStaff(actor); err != nil {
		return nil, err
	}
	child, err := s.children.Authorize(ctx, childID, actor)
	if err != nil {
		return nil, err
	}

	performer := actor.UserID
	entry := &models.Checkin{
		ChildID:     child.ID,
		Action:      action,
		Status:      status,
		PerformedBy: &performer,
		Timestamp:   s.now().UTC(),
	}
	if err := s.store.UpdateStatus(ctx, entry); err != nil {
		return nil, s.writeError(err, "failed to update status")
	}

	s.metrics.RecordChildUpdate(string(action))
	s.events.Publish(UpdateEvent{Type: EventStatusChanged, ChildID: child.ID, Group: child.Group, Status: status, ActorID: actor.UserID, OccurredAt: entry.Timestamp})
	return entry, nil
}

// ReportSick stores the child's sick day. Parents and staff may report.
func (s *AttendanceService) ReportSick(ctx context.Context, childID string, req dto.SickRequest, actor *models.JWTClaims) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid sick payload")
	}
	day, err := dayview.ParseDateID(req.Date, s.loc)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	child, err := s.children.Authorize(ctx, childID, actor)
	if err != nil {
		return err
	}

	dateID := dayview.DateID(day)
	at := s.now().UTC()
	if err := s.store.SetSick(ctx, child.ID, dateID, req.Reason, at); err != nil {
		return s.writeError(err, "failed to report sick day")
	}
	s.metrics.RecordChildUpdate("sick")
	s.events.Publish(UpdateEvent{Type: EventSickReported, ChildID: child.ID, Group: child.Group, DateID: dateID, ActorID: actor.UserID, OccurredAt: at})
	return nil
}

// ClearSick removes the sick day.
func (s *AttendanceService) ClearSick(ctx context.Context, childID string, actor *models.JWTClaims) error {
	child, err := s.children.Authorize(ctx, childID, actor)
	if err != nil {
		return err
	}
	at := s.now().UTC()
	if err := s.store.ClearSick(ctx, child.ID, at); err != nil {
		return s.writeError(err, "failed to clear sick day")
	}
	s.metrics.RecordChildUpdate("sick")
	s.events.Publish(UpdateEvent{Type: EventSickReported, ChildID: child.ID, Group: child.Group, ActorID: actor.UserID, OccurredAt: at})
	return nil
}

// SetVacation stores the inclusive vacation range.
func (s *AttendanceService) SetVacation(ctx context.Context, childID string, req dto.VacationRequest, actor *models.JWTClaims) error {
	from, fromOK := req.From.Time()
	to, toOK := req.To.Time()
	if !fromOK || !toOK {
		return appErrors.Clone(appErrors.ErrValidation, "from and to are required")
	}
	if dayview.StartOfDay(to, s.loc).Before(dayview.StartOfDay(from, s.loc)) {
		return appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}
	child, err := s.children.Authorize(ctx, childID, actor)
	if err != nil {
		return err
	}

	at := s.now().UTC()
	if err := s.store.SetVacation(ctx, child.ID, from.UTC(), to.UTC(), at); err != nil {
		return s.writeError(err, "failed to set vacation")
	}
	s.metrics.RecordChildUpdate("vacation")
	s.events.Publish(UpdateEvent{Type: EventVacationSet, ChildID: child.ID, Group: child.Group, ActorID: actor.UserID, OccurredAt: at})
	return nil
}

// ClearVacation removes the vacation range.
func (s *AttendanceService) ClearVacation(ctx context.Context, childID string, actor *models.JWTClaims) error {
	child, err := s.children.Authorize(ctx, childID, actor)
	if err != nil {
		return err
	}
	at := s.now().UTC()
	if err := s.store.ClearVacation(ctx, child.ID, at); err != nil {
		return s.writeError(err, "failed to clear vacation")
	}
	s.metrics.RecordChildUpdate("vacation")
	s.events.Publish(UpdateEvent{Type: EventVacationSet, ChildID: child.ID, Group: child.Group, ActorID: actor.UserID, OccurredAt: at})
	return nil
}

// StartSleep opens the sleep log for the selected day, which defaults to today.
func (s *AttendanceService) StartSleep(ctx context.Context, childID, date string, actor *models.JWTClaims) error {
	if err := ensureStaff(actor); err != nil {
		return err
	}
	now := s.now()
	selected := now
	if strings.TrimSpace(date) != "" {
		parsed, err := dayview.ParseDateID(date, s.loc)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		selected = parsed
	}
	child, err := s.children.Authorize(ctx, childID, actor)
	if err != nil {
		return err
	}

	dateID := dayview.DateID(selected)
	if err := s.store.StartSleep(ctx, child.ID, dateID, now.UTC()); err != nil {
		return s.writeError(err, "failed to start sleep")
	}
	s.metrics.RecordChildUpdate("sleep_start")
	s.events.Publish(UpdateEvent{Type: EventSleepLogged, ChildID: child.ID, Group: child.Group, DateID: dateID, ActorID: actor.UserID, OccurredAt: now.UTC()})
	return nil
}

// EndSleep closes the open sleep log.
func (s *AttendanceService) EndSleep(ctx context.Context, childID string, actor *models.JWTClaims) error {
	if err := ensureStaff(actor); err != nil {
		return err
	}
	child, err := s.children.Authorize(ctx, childID, actor)
	if err != nil {
		return err
	}
	if child.SleepStart == nil {
		return appErrors.Clone(appErrors.ErrConflict, "sleep has not been started")
	}

	at := s.now().UTC()
	if err := s.store.EndSleep(ctx, child.ID, at); err != nil {
		return s.writeError(err, "failed to end sleep")
	}
	s.metrics.RecordChildUpdate("sleep_end")
	var dateID string
	if child.SleepDateID != nil {
		dateID = *child.SleepDateID
	}
	s.events.Publish(UpdateEvent{Type: EventSleepLogged, ChildID: child.ID, Group: child.Group, DateID: dateID, ActorID: actor.UserID, OccurredAt: at})
	return nil
}

// SetSleepPlan stores the parents' sleep preference.
func (s *AttendanceService) SetSleepPlan(ctx context.Context, childID string, req dto.SleepPlanRequest, actor *models.JWTClaims) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid sleep plan payload")
	}
	var minutes *int
	if req.Planned {
		if req.Minutes == nil || *req.Minutes <= 0 {
			return appErrors.Clone(appErrors.ErrValidation, "minutes must be positive when sleep is planned")
		}
		minutes = req.Minutes
	}
	child, err := s.children.Authorize(ctx, childID, actor)
	if err != nil {
		return err
	}
	if err := s.store.SetSleepPlan(ctx, child.ID, req.Planned, minutes); err != nil {
		return s.writeError(err, "failed to set sleep plan")
	}
	s.metrics.RecordChildUpdate("sleep_plan")
	return nil
}

// SetDayReminder replaces the day reminder with the trimmed text.
func (s *AttendanceService) SetDayReminder(ctx context.Context, childID string, req dto.DayReminderRequest, actor *models.JWTClaims) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Validation(err, "invalid reminder payload")
	}
	child, err := s.children.Authorize(ctx, childID, actor)
	if err != nil {
		return "", err
	}
	reminder := strings.TrimSpace(req.Reminder)
	if err := s.store.SetDayReminder(ctx, child.ID, reminder); err != nil {
		return "", s.writeError(err, "failed to set day reminder")
	}
	s.metrics.RecordChildUpdate("day_reminder")
	return reminder, nil
}

// SetPhoto replaces the child's profile photo. Staff only.
func (s *AttendanceService) SetPhoto(ctx context.Context, childID string, req dto.PhotoRequest, actor *models.JWTClaims) error {
	if err := ensureStaff(actor); err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid photo payload")
	}
	if !strings.HasPrefix(req.DataURL, "data:image/") {
		return appErrors.Clone(appErrors.ErrValidation, "photo must be an image data URL")
	}
	if s.maxPhoto > 0 && len(req.DataURL) > s.maxPhoto {
		return appErrors.ErrPayloadTooLarge
	}
	child, err := s.children.Authorize(ctx, childID, actor)
	if err != nil {
		return err
	}
	if err := s.store.SetPhoto(ctx, child.ID, req.DataURL); err != nil {
		return s.writeError(err, "failed to set photo")
	}
	s.metrics.RecordChildUpdate("photo")
	return nil
}

// Checkins returns the status history of a child. Staff only.
func (s *AttendanceService) Checkins(ctx context.Context, childID string, limit int, actor *models.JWTClaims) ([]models.Checkin, error) {
	if err := ensureStaff(actor); err != nil {
		return nil, err
	}
	child, err := s.children.Authorize(ctx, childID, actor)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.ListCheckins(ctx, child.ID, limit)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list checkins")
	}
	if entries == nil {
		entries = []models.Checkin{}
	}
	return entries, nil
}

func (s *AttendanceService) writeError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "child not found")
	}
	s.logger.Error(message, zap.Error(err))
	return appErrors.Internal(err, message)
}
