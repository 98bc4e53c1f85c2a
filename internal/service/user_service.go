package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/daycare-api/internal/dto"
	"github.com/noah-isme/daycare-api/internal/models"
	appErrors "github.com/noah-isme/daycare-api/pkg/errors"
)

type userStore interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id string, role models.UserRole) error
	Deactivate(ctx context.Context, id string) error
}

type auditReader interface {
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
}

// UserService is the admin surface over accounts and the audit trail.
type UserService struct {
	users     userStore
	audit     auditWriter
	trail     auditReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs the service. trail may be nil when audit reads are not served.
func NewUserService(users userStore, audit auditWriter, trail auditReader, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{users: users, audit: audit, trail: trail, validator: validate, logger: logger}
}

// List pages through accounts.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 50
	}
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list users")
	}
	return users, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	return user, nil
}

// Create registers an active account. Emails are unique and stored lower case.
func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest, actor *models.JWTClaims, meta models.RequestMeta) (*models.User, error) {
	if err := ensureAdmin(actor); err != nil {
		return nil, err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid user payload")
	}

	email := req.Email
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}
	user := &models.User{
		Email:        email,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         req.Role,
		Active:       true,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Internal(err, "failed to create user")
	}

	s.record(ctx, actor, models.AuditActionUserCreate, user.ID, nil, map[string]interface{}{"email": user.Email, "role": user.Role}, meta)
	return user, nil
}

// UpdateRole changes a user's role. Admins cannot demote themselves.
func (s *UserService) UpdateRole(ctx context.Context, id string, req dto.UpdateRoleRequest, actor *models.JWTClaims, meta models.RequestMeta) (*models.User, error) {
	if err := ensureAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid role payload")
	}
	if id == actor.UserID && req.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cannot remove your own admin role")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == req.Role {
		return user, nil
	}
	previous := user.Role
	if err := s.users.UpdateRole(ctx, id, req.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to update role")
	}
	user.Role = req.Role

	s.record(ctx, actor, models.AuditActionUserRoleUpdate, id, map[string]interface{}{"role": previous}, map[string]interface{}{"role": user.Role}, meta)
	return user, nil
}

// Deactivate disables an account, ends its sessions and detaches it from children.
func (s *UserService) Deactivate(ctx context.Context, id string, actor *models.JWTClaims, meta models.RequestMeta) error {
	if err := ensureAdmin(actor); err != nil {
		return err
	}
	if id == actor.UserID {
		return appErrors.Clone(appErrors.ErrConflict, "cannot deactivate your own account")
	}
	if err := s.users.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Internal(err, "failed to deactivate user")
	}
	s.record(ctx, actor, models.AuditActionUserDelete, id, map[string]interface{}{"active": true}, map[string]interface{}{"active": false}, meta)
	return nil
}

// AuditTrail returns recent audit entries for a resource.
func (s *UserService) AuditTrail(ctx context.Context, query dto.AuditQuery, actor *models.JWTClaims) ([]models.AuditLog, error) {
	if err := ensureAdmin(actor); err != nil {
		return nil, err
	}
	if s.trail == nil {
		return nil, appErrors.ErrFeatureDisabled
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Validation(err, "invalid audit query")
	}
	entries, err := s.trail.List(ctx, models.AuditFilter{Resource: query.Resource, ResourceID: query.ResourceID, Limit: query.Limit})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to read audit trail")
	}
	return entries, nil
}

func (s *UserService) record(ctx context.Context, actor *models.JWTClaims, action, userID string, oldValues, newValues map[string]interface{}, meta models.RequestMeta) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "users",
		ResourceID: &userID,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}
	if oldValues != nil {
		entry.OldValues, _ = json.Marshal(oldValues)
	}
	if newValues != nil {
		entry.NewValues, _ = json.Marshal(newValues)
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record user audit log", zap.String("action", action), zap.Error(err))
	}
}
