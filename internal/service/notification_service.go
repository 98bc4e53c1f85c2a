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

// Notification messages shown to the user.
const (
	NotificationStatusUpdated  = "Status (levert/hentet/syk/ferie) er oppdatert."
	NotificationSummaryUpdated = "\"Dagen i dag\" eller bilder er oppdatert."
	NotificationNothingNew     = "Ingen nye oppdateringer siden sist."
)

type childMetaStore interface {
	Get(ctx context.Context, userID, childID string) (*models.ChildMeta, error)
	TouchLastSeen(ctx context.Context, userID, childID string, ts time.Time) error
}

// NotificationService reports what changed on a child's day since the user last looked.
type NotificationService struct {
	meta      childMetaStore
	children  childAuthorizer
	summaries daySummaryReader
	logger    *zap.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewNotificationService constructs the service.
func NewNotificationService(meta childMetaStore, children childAuthorizer, summaries daySummaryReader, loc *time.Location, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &NotificationService{meta: meta, children: children, summaries: summaries, logger: logger, loc: loc, now: time.Now}
}

// Summary counts updates newer than the user's last seen marker. The day
// summary of date (default today) is considered alongside the child's status.
func (s *NotificationService) Summary(ctx context.Context, childID, date string, claims *models.JWTClaims) (*dto.NotificationSummary, error) {
	child, err := s.children.Authorize(ctx, childID, claims)
	if err != nil {
		return nil, err
	}
	dateID, err := s.dateID(date)
	if err != nil {
		return nil, err
	}

	var lastSeen *time.Time
	meta, err := s.meta.Get(ctx, claims.UserID, child.ID)
	switch {
	case err == nil:
		lastSeen = meta.LastSeenAt
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, appErrors.Internal(err, "failed to load last seen marker")
	}

	var summaryUpdated *time.Time
	summary, err := s.summaries.Get(ctx, child.Group, dateID)
	switch {
	case err == nil:
		summaryUpdated = summary.UpdatedAt
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, appErrors.Internal(err, "failed to load day summary")
	}

	result := &dto.NotificationSummary{ChildID: child.ID, LastSeenAt: lastSeen, Messages: []string{}}
	if newerThan(child.LastUpdated, lastSeen) {
		result.Messages = append(result.Messages, NotificationStatusUpdated)
	}
	if newerThan(summaryUpdated, lastSeen) {
		result.Messages = append(result.Messages, NotificationSummaryUpdated)
	}
	result.Count = len(result.Messages)
	if result.Count == 0 {
		result.Messages = append(result.Messages, NotificationNothingNew)
	}
	return result, nil
}

// MarkSeen moves the user's last seen marker to now.
func (s *NotificationService) MarkSeen(ctx context.Context, childID string, claims *models.JWTClaims) (time.Time, error) {
	child, err := s.children.Authorize(ctx, childID, claims)
	if err != nil {
		return time.Time{}, err
	}
	at := s.now().UTC()
	if err := s.meta.TouchLastSeen(ctx, claims.UserID, child.ID, at); err != nil {
		return time.Time{}, appErrors.Internal(err, "failed to update last seen marker")
	}
	return at, nil
}

func (s *NotificationService) dateID(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return dayview.DateID(localNoon(s.now(), s.loc)), nil
	}
	day, err := dayview.ParseDateID(raw, s.loc)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	return dayview.DateID(day), nil
}

// newerThan treats a missing marker as the epoch, so any update counts.
func newerThan(updated, marker *time.Time) bool {
	if updated == nil || updated.IsZero() {
		return false
	}
	if marker == nil {
		return true
	}
	return updated.After(*marker)
}
