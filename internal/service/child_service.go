package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/daycare-api/internal/dto"
	"github.com/noah-isme/daycare-api/internal/models"
	appErrors "github.com/noah-isme/daycare-api/pkg/errors"
)

const childResource = "children"

type childRepository interface {
	FindByID(ctx context.Context, id string) (*models.Child, error)
	List(ctx context.Context, filter models.ChildFilter) ([]models.Child, error)
	Create(ctx context.Context, child *models.Child) error
	Delete(ctx context.Context, id string) error
}

type parentDirectory interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

// ChildService handles child records and access to them.
type ChildService struct {
	repo      childRepository
	parents   parentDirectory
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChildService constructs the service.
func NewChildService(repo childRepository, parents parentDirectory, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *ChildService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChildService{repo: repo, parents: parents, audit: audit, validator: validate, logger: logger}
}

// List returns the children visible to claims. Staff may narrow by group;
// parents always get their own children only.
func (s *ChildService) List(ctx context.Context, group string, claims *models.JWTClaims) ([]models.Child, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.ChildFilter{Group: strings.TrimSpace(group)}
	switch {
	case claims.Role.IsStaff():
	case claims.Role == models.RoleParent:
		filter.ParentID = claims.UserID
	default:
		return nil, appErrors.ErrForbidden
	}

	children, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list children")
	}
	if children == nil {
		children = []models.Child{}
	}
	return children, nil
}

// Authorize loads the child and checks that claims may access it.
func (s *ChildService) Authorize(ctx context.Context, id string, claims *models.JWTClaims) (*models.Child, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	child, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "child not found")
		}
		return nil, appErrors.Internal(err, "failed to load child")
	}
	if !canSeeChild(claims, child) {
		return nil, appErrors.ErrForbidden
	}
	return child, nil
}

// Create registers a child. Every parent id must belong to an active parent account.
func (s *ChildService) Create(ctx context.Context, req dto.CreateChildRequest, actor *models.JWTClaims, meta models.RequestMeta) (*models.Child, error) {
	if actor == nil || actor.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid child payload")
	}

	parentIDs := uniqueStrings(req.ParentIDs)
	parents, err := s.parents.FindByIDs(ctx, parentIDs)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load parents")
	}
	found := make(map[string]bool, len(parents))
	for _, p := range parents {
		if p.Role == models.RoleParent {
			found[p.ID] = true
		}
	}
	for _, id := range parentIDs {
		if !found[id] {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown parent: "+id)
		}
	}

	child := &models.Child{
		Name:      strings.TrimSpace(req.Name),
		Group:     strings.TrimSpace(req.Group),
		ParentIDs: parentIDs,
		Status:    models.ChildStatusNone,
	}
	if err := s.repo.Create(ctx, child); err != nil {
		return nil, appErrors.Internal(err, "failed to create child")
	}

	payload, _ := json.Marshal(map[string]interface{}{"name": child.Name, "group": child.Group, "parentIds": parentIDs})
	s.emitAudit(ctx, actor, models.AuditActionChildCreate, child.ID, nil, payload, meta)
	return child, nil
}

// Delete removes a child.
func (s *ChildService) Delete(ctx context.Context, id string, actor *models.JWTClaims, meta models.RequestMeta) error {
	if actor == nil || actor.Role != models.RoleAdmin {
		return appErrors.ErrForbidden
	}
	child, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "child not found")
		}
		return appErrors.Internal(err, "failed to load child")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "child not found")
		}
		return appErrors.Internal(err, "failed to delete child")
	}

	old, _ := json.Marshal(map[string]interface{}{"name": child.Name, "group": child.Group})
	s.emitAudit(ctx, actor, models.AuditActionChildDelete, child.ID, old, nil, meta)
	return nil
}

// Parents returns contact details for the child's parents. Staff only.
func (s *ChildService) Parents(ctx context.Context, id string, claims *models.JWTClaims) ([]dto.ParentContact, error) {
	if err := ensureStaff(claims); err != nil {
		return nil, err
	}
	child, err := s.Authorize(ctx, id, claims)
	if err != nil {
		return nil, err
	}
	users, err := s.parents.FindByIDs(ctx, child.ParentIDs)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load parents")
	}
	contacts := make([]dto.ParentContact, 0, len(users))
	for _, u := range users {
		contacts = append(contacts, dto.ParentContact{ID: u.ID, FullName: u.FullName, Email: u.Email, Phone: u.Phone})
	}
	return contacts, nil
}

func (s *ChildService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, childID string, oldValues, newValues []byte, meta models.RequestMeta) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   childResource,
		ResourceID: &childID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record child audit log", zap.String("action", action), zap.Error(err))
	}
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
