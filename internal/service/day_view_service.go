package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/daycare-api/internal/dayview"
	"github.com/noah-isme/daycare-api/internal/dto"
	"github.com/noah-isme/daycare-api/internal/models"
	appErrors "github.com/noah-isme/daycare-api/pkg/errors"
)

type daySummaryReader interface {
	Get(ctx context.Context, group, dateID string) (*models.DaySummary, error)
}

type groupAnnouncements interface {
	ForGroup(ctx context.Context, group string) ([]models.GroupAnnouncement, error)
}

// DayViewService resolves what a parent or staff member sees for a child on one day.
type DayViewService struct {
	children      childAuthorizer
	announcements groupAnnouncements
	summaries     daySummaryReader
	metrics       *MetricsService
	logger        *zap.Logger
	loc           *time.Location
	now           func() time.Time
}

// NewDayViewService constructs the service. loc defaults to UTC.
func NewDayViewService(children childAuthorizer, announcements groupAnnouncements, summaries daySummaryReader, metrics *MetricsService, loc *time.Location, now func() time.Time, logger *zap.Logger) *DayViewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &DayViewService{children: children, announcements: announcements, summaries: summaries, metrics: metrics, logger: logger, loc: loc, now: now}
}

// Today returns noon of the current calendar day in the service location.
func (s *DayViewService) Today() time.Time {
	return localNoon(s.now(), s.loc)
}

// localNoon anchors t at noon of its calendar day in loc so DateID yields that day.
func localNoon(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, loc)
}

// Target parses the requested date, defaulting to today. Days after tomorrow
// are rejected.
func (s *DayViewService) Target(date string) (time.Time, error) {
	today := s.Today()
	if strings.TrimSpace(date) == "" {
		return today, nil
	}
	target, err := dayview.ParseDateID(date, s.loc)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	tomorrow := dayview.StartOfDay(today, s.loc).AddDate(0, 0, 1)
	if dayview.StartOfDay(target, s.loc).After(tomorrow) {
		return time.Time{}, appErrors.ErrNavigationLimit
	}
	return target, nil
}

// Resolve returns the day view of childID on date.
func (s *DayViewService) Resolve(ctx context.Context, childID, date string, claims *models.JWTClaims) (*dto.DayViewResponse, error) {
	target, err := s.Target(date)
	if err != nil {
		return nil, err
	}
	child, err := s.children.Authorize(ctx, childID, claims)
	if err != nil {
		return nil, err
	}
	announcements, err := s.announcements.ForGroup(ctx, child.Group)
	if err != nil {
		return nil, err
	}
	summary, err := s.summary(ctx, child.Group, dayview.DateID(target))
	if err != nil {
		return nil, err
	}
	return s.build(*child, target, announcements, summary), nil
}

// ResolveChild assembles the view for an already loaded child. Callers are
// responsible for access checks.
func (s *DayViewService) ResolveChild(child models.Child, target time.Time, announcements []models.GroupAnnouncement, summary *models.DaySummary) *dto.DayViewResponse {
	return s.build(child, target, announcements, summary)
}

func (s *DayViewService) build(child models.Child, target time.Time, announcements []models.GroupAnnouncement, summary *models.DaySummary) *dto.DayViewResponse {
	today := s.Today()
	view := dayview.Resolve(dayview.Input{
		Child:         child,
		Target:        target,
		Today:         today,
		Announcements: announcements,
		Summary:       summary,
		Location:      s.loc,
	})
	s.metrics.RecordDayView(view.DisplayStatus)

	resp := &dto.DayViewResponse{
		ChildID:          child.ID,
		ChildName:        child.Name,
		Group:            child.Group,
		PhotoDataURL:     child.PhotoDataURL,
		DateID:           view.DateID,
		DisplayStatus:    view.DisplayStatus,
		DisplayTimestamp: view.DisplayTimestamp,
		StatusText:       view.StatusText,
		SleepText:        view.SleepText,
		PlannedSleepText: view.PlannedSleepText,
		DayReminderText:  view.DayReminderText,
		Announcements:    view.VisibleAnnouncements,
		Note:             view.Note,
		Photos:           view.Photos,
		CanGoForward:     view.CanGoForward,
		PreviousDateID:   dayview.DateID(dayview.PreviousDay(target)),
	}
	if resp.Announcements == nil {
		resp.Announcements = []models.GroupAnnouncement{}
	}
	if next, ok := dayview.NextDay(target, today, s.loc); ok {
		id := dayview.DateID(next)
		resp.NextDateID = &id
	}
	return resp
}

func (s *DayViewService) summary(ctx context.Context, group, dateID string) (*models.DaySummary, error) {
	if s.summaries == nil {
		return nil, nil
	}
	summary, err := s.summaries.Get(ctx, group, dateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Internal(err, "failed to load day summary")
	}
	return summary, nil
}
