package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/daycare-api/internal/models"
	appErrors "github.com/noah-isme/daycare-api/pkg/errors"
	"github.com/noah-isme/daycare-api/pkg/response"
)

// RequireRoles admits callers holding one of roles. It must run after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return RequireSelfOr("", roles...)
}

// RequireSelfOr admits callers holding one of roles, and callers whose user id
// equals the path parameter param. An empty param disables the self check.
func RequireSelfOr(param string, roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}
		if param != "" && c.Param(param) == claims.UserID {
			c.Next()
			return
		}
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role "+string(claims.Role)+" may not access this resource"))
	}
}

// ClaimsFrom returns the claims JWT stored on the context.
func ClaimsFrom(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok && claims != nil
}
