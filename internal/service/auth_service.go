package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/daycare-api/internal/models"
	appErrors "github.com/noah-isme/daycare-api/pkg/errors"
)

type credentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error
}

type sessionStore interface {
	Create(ctx context.Context, session *models.RefreshSession) error
	FindByHash(ctx context.Context, tokenHash string) (*models.RefreshSession, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	RevokeAll(ctx context.Context, userID string, at time.Time) (int64, error)
}

// AuthConfig defines token lifetimes and signing.
type AuthConfig struct {
	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	Issuer             string
	// SingleSession revokes a user's older refresh sessions on every login.
	SingleSession bool
}

// AuthService signs users in and manages their refresh sessions.
type AuthService struct {
	users     credentialStore
	sessions  sessionStore
	audit     auditWriter
	children  childLister
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs the service. audit and children may be nil; with
// children set, parent profiles carry the ids of their children.
func NewAuthService(users credentialStore, sessions sessionStore, audit auditWriter, children childLister, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		audit:     audit,
		children:  children,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Login checks credentials and opens a refresh session.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, meta models.RequestMeta) (*models.AuthTokens, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid login payload")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Internal(err, "failed to fetch user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	if s.config.SingleSession {
		if _, err := s.sessions.RevokeAll(ctx, user.ID, s.now()); err != nil {
			s.logger.Warn("failed to revoke previous sessions", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	tokens, err := s.issue(ctx, user, meta)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}
	s.record(ctx, user.ID, models.AuditActionLogin, fmt.Sprintf(`{"role":%q}`, user.Role), meta)
	return tokens, nil
}

// Refresh rotates a refresh token: the presented session is revoked and a new one issued.
func (s *AuthService) Refresh(ctx context.Context, req models.RefreshRequest, meta models.RequestMeta) (*models.AuthTokens, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid refresh payload")
	}
	session, err := s.activeSession(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	if err := s.sessions.Revoke(ctx, session.ID, s.now()); err != nil {
		return nil, appErrors.Internal(err, "failed to rotate session")
	}
	return s.issue(ctx, user, meta)
}

// Logout revokes the caller's refresh session.
func (s *AuthService) Logout(ctx context.Context, refreshToken string, claims *models.JWTClaims, meta models.RequestMeta) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	session, err := s.activeSession(ctx, refreshToken)
	if err != nil {
		return err
	}
	if session.UserID != claims.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "session belongs to another user")
	}
	if err := s.sessions.Revoke(ctx, session.ID, s.now()); err != nil {
		return appErrors.Internal(err, "failed to revoke session")
	}
	s.record(ctx, claims.UserID, models.AuditActionLogout, `{}`, meta)
	return nil
}

// ChangePassword verifies the current password, stores the new one and ends
// every open session of the user.
func (s *AuthService) ChangePassword(ctx context.Context, claims *models.JWTClaims, req models.ChangePasswordRequest, meta models.RequestMeta) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid change password payload")
	}
	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "current password does not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Internal(err, "failed to hash password")
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash), s.now()); err != nil {
		return appErrors.Internal(err, "failed to update password")
	}

	revoked, err := s.sessions.RevokeAll(ctx, user.ID, s.now())
	if err != nil {
		s.logger.Warn("failed to revoke sessions after password change", zap.String("user_id", user.ID), zap.Error(err))
	}
	s.record(ctx, user.ID, models.AuditActionPasswordChange, fmt.Sprintf(`{"revoked_sessions":%d}`, revoked), meta)
	return nil
}

// ValidateToken parses an access token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now)}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(s.config.AccessTokenSecret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// Me returns the profile of the signed in user.
func (s *AuthService) Me(ctx context.Context, claims *models.JWTClaims) (*models.UserInfo, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	info := s.profile(ctx, user)
	return &info, nil
}

func (s *AuthService) activeUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}
	return user, nil
}

func (s *AuthService) activeSession(ctx context.Context, refreshToken string) (*models.RefreshSession, error) {
	session, err := s.sessions.FindByHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unknown refresh token")
		}
		return nil, appErrors.Internal(err, "failed to load session")
	}
	if !session.Active(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token is expired or revoked")
	}
	return session, nil
}

// issue signs an access token and stores a fresh refresh session for user.
func (s *AuthService) issue(ctx context.Context, user *models.User, meta models.RequestMeta) (*models.AuthTokens, error) {
	issuedAt := s.now()
	access, accessExp, err := s.signAccessToken(user, issuedAt)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign access token")
	}
	refresh, err := newRefreshToken()
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create refresh token")
	}

	session := &models.RefreshSession{
		UserID:    user.ID,
		TokenHash: hashToken(refresh),
		ExpiresAt: issuedAt.Add(s.config.RefreshTokenExpiry),
		CreatedAt: issuedAt,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Internal(err, "failed to store session")
	}

	return &models.AuthTokens{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: session.ExpiresAt,
		User:             s.profile(ctx, user),
	}, nil
}

func (s *AuthService) profile(ctx context.Context, user *models.User) models.UserInfo {
	info := models.UserInfo{ID: user.ID, Email: user.Email, FullName: user.FullName, Phone: user.Phone, Role: user.Role}
	if user.Role != models.RoleParent || s.children == nil {
		return info
	}
	children, err := s.children.List(ctx, models.ChildFilter{ParentID: user.ID})
	if err != nil {
		s.logger.Warn("failed to list children of parent", zap.String("user_id", user.ID), zap.Error(err))
		return info
	}
	for _, child := range children {
		info.ChildIDs = append(info.ChildIDs, child.ID)
	}
	return info
}

func (s *AuthService) signAccessToken(user *models.User, issuedAt time.Time) (string, time.Time, error) {
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		UserID:   user.ID,
		Role:     user.Role,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) record(ctx context.Context, userID, action, payload string, meta models.RequestMeta) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "auth",
		ResourceID: &userID,
		NewValues:  []byte(payload),
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record auth audit log", zap.String("action", action), zap.Error(err))
	}
}

func newRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// hashToken is the lookup key of a refresh token at rest.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
