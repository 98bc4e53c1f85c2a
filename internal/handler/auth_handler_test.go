package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/daycare-api/internal/models"
	appErrors "github.com/noah-isme/daycare-api/pkg/errors"
)

type authServiceStub struct {
	login     models.LoginRequest
	refreshed string
	loggedOut string
	changed   *models.ChangePasswordRequest
	meta      models.RequestMeta
	err       error
}

func (s *authServiceStub) tokens() *models.AuthTokens {
	return &models.AuthTokens{
		AccessToken:      "access",
		RefreshToken:     "refresh",
		AccessExpiresAt:  time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC),
		RefreshExpiresAt: time.Date(2024, 6, 13, 8, 0, 0, 0, time.UTC),
		User:             models.UserInfo{ID: "p1", Role: models.RoleParent, ChildIDs: []string{"c1"}},
	}
}

func (s *authServiceStub) Login(ctx context.Context, req models.LoginRequest, meta models.RequestMeta) (*models.AuthTokens, error) {
	s.login, s.meta = req, meta
	if s.err != nil {
		return nil, s.err
	}
	return s.tokens(), nil
}

func (s *authServiceStub) Refresh(ctx context.Context, req models.RefreshRequest, meta models.RequestMeta) (*models.AuthTokens, error) {
	s.refreshed = req.RefreshToken
	if s.err != nil {
		return nil, s.err
	}
	return s.tokens(), nil
}

func (s *authServiceStub) Logout(ctx context.Context, refreshToken string, claims *models.JWTClaims, meta models.RequestMeta) error {
	s.loggedOut = refreshToken
	return s.err
}

func (s *authServiceStub) ChangePassword(ctx context.Context, claims *models.JWTClaims, req models.ChangePasswordRequest, meta models.RequestMeta) error {
	s.changed = &req
	return s.err
}

func (s *authServiceStub) Me(ctx context.Context, claims *models.JWTClaims) (*models.UserInfo, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return &models.UserInfo{ID: claims.UserID, Role: claims.Role}, nil
}

func TestAuthHandlerLogin(t *testing.T) {
	svc := &authServiceStub{}
	h := NewAuthHandler(svc)

	c, w := newTestContext(http.MethodPost, "/auth/login", `{"email":"kari@example.no","password":"hemmelig"}`, nil)
	c.Request.Header.Set("User-Agent", "app/1.0")
	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "kari@example.no", svc.login.Email)
	assert.Equal(t, "app/1.0", svc.meta.UserAgent)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "access", data["access_token"])
	assert.Equal(t, []interface{}{"c1"}, data["user"].(map[string]interface{})["child_ids"])
}

func TestAuthHandlerLoginErrors(t *testing.T) {
	h := NewAuthHandler(&authServiceStub{})
	c, w := newTestContext(http.MethodPost, "/auth/login", `{"email":`, nil)
	h.Login(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h = NewAuthHandler(&authServiceStub{err: appErrors.ErrInvalidCredentials})
	c, w = newTestContext(http.MethodPost, "/auth/login", `{"email":"kari@example.no","password":"feil"}`, nil)
	h.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestAuthHandlerRefreshAndLogout(t *testing.T) {
	svc := &authServiceStub{}
	h := NewAuthHandler(svc)

	c, w := newTestContext(http.MethodPost, "/auth/refresh", `{"refresh_token":"r1"}`, nil)
	h.Refresh(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "r1", svc.refreshed)

	c, _ = newTestContext(http.MethodPost, "/auth/logout", `{"refresh_token":"r2"}`, parent)
	h.Logout(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "r2", svc.loggedOut)

	svc.err = appErrors.ErrForbidden
	c, w = newTestContext(http.MethodPost, "/auth/logout", `{"refresh_token":"r3"}`, parent)
	h.Logout(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthHandlerChangePasswordAndMe(t *testing.T) {
	svc := &authServiceStub{}
	h := NewAuthHandler(svc)

	c, _ := newTestContext(http.MethodPost, "/auth/change-password", `{"current_password":"gammelt1","new_password":"nytt-passord"}`, parent)
	h.ChangePassword(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	require.NotNil(t, svc.changed)
	assert.Equal(t, "nytt-passord", svc.changed.NewPassword)

	c, w := newTestContext(http.MethodGet, "/auth/me", "", staff)
	h.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "staff-1", decodeEnvelope(t, w)["data"].(map[string]interface{})["id"])

	c, w = newTestContext(http.MethodGet, "/auth/me", "", nil)
	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
