package service

import (
	"context"

	"github.com/noah-isme/daycare-api/internal/models"
	appErrors "github.com/noah-isme/daycare-api/pkg/errors"
)

type childLister interface {
	List(ctx context.Context, filter models.ChildFilter) ([]models.Child, error)
}

// canSeeChild reports whether claims may read or write the child's day.
// Staff see every child, parents only their own.
func canSeeChild(claims *models.JWTClaims, child *models.Child) bool {
	if claims == nil || child == nil {
		return false
	}
	if claims.Role.IsStaff() {
		return true
	}
	return claims.Role == models.RoleParent && child.HasParent(claims.UserID)
}

// ensureGroupAccess allows staff and parents with at least one child in group.
func ensureGroupAccess(ctx context.Context, children childLister, claims *models.JWTClaims, group string) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if group == "" {
		return appErrors.Clone(appErrors.ErrValidation, "group is required")
	}
	if claims.Role.IsStaff() {
		return nil
	}
	if claims.Role != models.RoleParent {
		return appErrors.ErrForbidden
	}
	own, err := children.List(ctx, models.ChildFilter{Group: group, ParentID: claims.UserID})
	if err != nil {
		return appErrors.Internal(err, "failed to verify group access")
	}
	if len(own) == 0 {
		return appErrors.ErrForbidden
	}
	return nil
}

// ensureStaff rejects anyone who is not STAFF or ADMIN.
func ensureStaff(claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if !claims.Role.IsStaff() {
		return appErrors.ErrForbidden
	}
	return nil
}

// ensureAdmin rejects anyone who is not ADMIN.
func ensureAdmin(claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleAdmin {
		return appErrors.ErrForbidden
	}
	return nil
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}
