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

type daySummaryStore interface {
	daySummaryReader
	UpsertNote(ctx context.Context, group, dateID, note string, at time.Time) (*models.DaySummary, error)
	AppendPhoto(ctx context.Context, group, dateID, photo string, at time.Time) (*models.DaySummary, error)
}

// DaySummaryService manages the per group note and photo album of a day.
type DaySummaryService struct {
	store     daySummaryStore
	children  childLister
	events    *EventService
	validator *validator.Validate
	logger    *zap.Logger
	loc       *time.Location
	maxPhoto  int
	now       func() time.Time
}

// NewDaySummaryService constructs the service.
func NewDaySummaryService(store daySummaryStore, children childLister, events *EventService, loc *time.Location, maxPhoto int, validate *validator.Validate, logger *zap.Logger) *DaySummaryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DaySummaryService{store: store, children: children, events: events, validator: validate, logger: logger, loc: loc, maxPhoto: maxPhoto, now: time.Now}
}

// Get returns the summary of group on date. A missing document yields an
// empty summary rather than an error.
func (s *DaySummaryService) Get(ctx context.Context, group, date string, claims *models.JWTClaims) (*models.DaySummary, error) {
	if err := ensureGroupAccess(ctx, s.children, claims, group); err != nil {
		return nil, err
	}
	dateID, err := s.dateID(date)
	if err != nil {
		return nil, err
	}
	summary, err := s.store.Get(ctx, group, dateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.DaySummary{ID: models.DaySummaryID(group, dateID), GroupID: group, Date: dateID, Base64Photos: []string{}}, nil
		}
		return nil, appErrors.Internal(err, "failed to load day summary")
	}
	return summary, nil
}

// UpsertNote sets the note of the day, keeping existing photos.
func (s *DaySummaryService) UpsertNote(ctx context.Context, group string, req dto.DaySummaryNoteRequest, actor *models.JWTClaims) (*models.DaySummary, error) {
	if err := ensureStaff(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid day summary payload")
	}
	if strings.TrimSpace(group) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "group is required")
	}
	dateID, err := s.dateID(req.Date)
	if err != nil {
		return nil, err
	}

	at := s.now().UTC()
	summary, err := s.store.UpsertNote(ctx, group, dateID, strings.TrimSpace(req.Note), at)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to save day summary note")
	}
	s.events.Publish(UpdateEvent{Type: EventDaySummaryChanged, Group: group, DateID: dateID, ActorID: actor.UserID, OccurredAt: at})
	return summary, nil
}

// AppendPhoto adds a photo to the day's album. The same blob is stored once.
func (s *DaySummaryService) AppendPhoto(ctx context.Context, group string, req dto.DaySummaryPhotoRequest, actor *models.JWTClaims) (*models.DaySummary, error) {
	if err := ensureStaff(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid day summary payload")
	}
	if strings.TrimSpace(group) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "group is required")
	}
	if s.maxPhoto > 0 && len(req.Photo) > s.maxPhoto {
		return nil, appErrors.ErrPayloadTooLarge
	}
	dateID, err := s.dateID(req.Date)
	if err != nil {
		return nil, err
	}

	at := s.now().UTC()
	summary, err := s.store.AppendPhoto(ctx, group, dateID, req.Photo, at)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to append day summary photo")
	}
	s.events.Publish(UpdateEvent{Type: EventDaySummaryChanged, Group: group, DateID: dateID, ActorID: actor.UserID, OccurredAt: at})
	return summary, nil
}

func (s *DaySummaryService) dateID(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return dayview.DateID(localNoon(s.now(), s.loc)), nil
	}
	day, err := dayview.ParseDateID(raw, s.loc)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	return dayview.DateID(day), nil
}
