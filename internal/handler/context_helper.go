package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/daycare-api/internal/middleware"
	"github.com/noah-isme/daycare-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, _ := middleware.ClaimsFrom(c)
	return claims
}

// requestMeta captures caller details for audit logs.
func requestMeta(c *gin.Context) models.RequestMeta {
	return models.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}
