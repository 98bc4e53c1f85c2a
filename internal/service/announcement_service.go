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

const announcementCachePrefix = "announcements:"

// AnnouncementCachePattern matches every cached group announcement list.
const AnnouncementCachePattern = announcementCachePrefix + "*"

type announcementRepository interface {
	ListByGroup(ctx context.Context, groupID string) ([]models.GroupAnnouncement, error)
	GetByID(ctx context.Context, id string) (*models.GroupAnnouncement, error)
	Create(ctx context.Context, announcement *models.GroupAnnouncement) error
	Update(ctx context.Context, announcement *models.GroupAnnouncement) error
	Delete(ctx context.Context, id string) error
}

type announcementCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// AnnouncementService manages group announcements and their cached lists.
type AnnouncementService struct {
	repo      announcementRepository
	children  childLister
	cache     announcementCache
	ttl       time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the service. cache may be nil.
func NewAnnouncementService(repo announcementRepository, children childLister, cache announcementCache, ttl time.Duration, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, children: children, cache: cache, ttl: ttl, validator: validate, logger: logger}
}

// ForGroup returns every announcement of group in source order, served from
// cache when possible. The list is not date filtered.
func (s *AnnouncementService) ForGroup(ctx context.Context, group string) ([]models.GroupAnnouncement, error) {
	return loadThrough(ctx, s.cache, announcementCachePrefix+group, s.ttl, func(ctx context.Context) ([]models.GroupAnnouncement, error) {
		list, err := s.repo.ListByGroup(ctx, group)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to list announcements")
		}
		if list == nil {
			list = []models.GroupAnnouncement{}
		}
		return list, nil
	})
}

// List returns the group's announcements to staff or parents of the group.
func (s *AnnouncementService) List(ctx context.Context, group string, claims *models.JWTClaims) ([]models.GroupAnnouncement, error) {
	if err := ensureGroupAccess(ctx, s.children, claims, group); err != nil {
		return nil, err
	}
	return s.ForGroup(ctx, group)
}

// Create adds an announcement to group.
func (s *AnnouncementService) Create(ctx context.Context, group string, req dto.AnnouncementRequest, actor *models.JWTClaims) (*models.GroupAnnouncement, error) {
	if err := ensureStaff(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(group) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "group is required")
	}
	announcement := &models.GroupAnnouncement{GroupID: group, CreatedBy: actor.UserID}
	if err := s.apply(announcement, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, appErrors.Internal(err, "failed to create announcement")
	}
	s.invalidate(ctx, group)
	return announcement, nil
}

// Update replaces the content and visibility of an announcement.
func (s *AnnouncementService) Update(ctx context.Context, id string, req dto.AnnouncementRequest, actor *models.JWTClaims) (*models.GroupAnnouncement, error) {
	if err := ensureStaff(actor); err != nil {
		return nil, err
	}
	announcement, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(announcement, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, announcement); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Internal(err, "failed to update announcement")
	}
	s.invalidate(ctx, announcement.GroupID)
	return announcement, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if err := ensureStaff(actor); err != nil {
		return err
	}
	announcement, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return appErrors.Internal(err, "failed to delete announcement")
	}
	s.invalidate(ctx, announcement.GroupID)
	return nil
}

func (s *AnnouncementService) get(ctx context.Context, id string) (*models.GroupAnnouncement, error) {
	announcement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Internal(err, "failed to load announcement")
	}
	return announcement, nil
}

// apply validates req and copies it onto a. Dates are stored as normalized day ids.
func (s *AnnouncementService) apply(a *models.GroupAnnouncement, req dto.AnnouncementRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid announcement payload")
	}

	from, fromOK := normalizeOptionalDate(req.FromDate)
	to, toOK := normalizeOptionalDate(req.ToDate)
	if !fromOK || !toOK {
		return appErrors.Clone(appErrors.ErrValidation, "dates must be YYYY-MM-DD")
	}
	if !req.AlwaysVisible {
		if from == nil || to == nil {
			return appErrors.Clone(appErrors.ErrValidation, "fromDate and toDate are required unless alwaysVisible")
		}
		if *from > *to {
			return appErrors.Clone(appErrors.ErrValidation, "fromDate must not be after toDate")
		}
	}

	always := req.AlwaysVisible
	a.Title = strings.TrimSpace(req.Title)
	a.Message = req.Message
	a.AlwaysVisible = &always
	a.FromDate = from
	a.ToDate = to
	return nil
}

func (s *AnnouncementService) invalidate(ctx context.Context, group string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, announcementCachePrefix+group); err != nil {
		s.logger.Warn("failed to invalidate announcement cache", zap.String("group", group), zap.Error(err))
	}
}

// normalizeOptionalDate returns (nil, true) for an absent or blank value.
func normalizeOptionalDate(raw *string) (*string, bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, true
	}
	id, ok := dayview.NormalizeDateID(*raw)
	if !ok {
		return nil, false
	}
	if _, err := time.Parse(dayview.DateIDLayout, id); err != nil {
		return nil, false
	}
	return &id, true
}
