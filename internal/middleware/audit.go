package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/daycare-api/internal/models"
	"github.com/noah-isme/daycare-api/pkg/middleware/requestid"
)

const auditWriteTimeout = 3 * time.Second

// AuditWriter persists audit trail entries.
type AuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type auditRequest struct {
	Route     string `json:"route"`
	Method    string `json:"method"`
	Status    int    `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	RequestID string `json:"request_id,omitempty"`
}

// Audit appends a trail entry once the route has answered below 400. idParam
// names the path parameter holding the resource id, if any. The entry is
// written even when the client has already gone away. A nil writer disables
// the middleware.
func Audit(writer AuditWriter, logger *zap.Logger, action, resource, idParam string) gin.HandlerFunc {
	if writer == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if status >= 400 {
			return
		}

		entry := &models.AuditLog{
			Action:    action,
			Resource:  resource,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if claims, ok := ClaimsFrom(c); ok {
			userID := claims.UserID
			entry.UserID = &userID
		}
		if idParam != "" {
			if id := c.Param(idParam); id != "" {
				entry.ResourceID = &id
			}
		}
		entry.NewValues, _ = json.Marshal(auditRequest{
			Route:     c.FullPath(),
			Method:    c.Request.Method,
			Status:    status,
			LatencyMs: time.Since(start).Milliseconds(),
			RequestID: requestid.Value(c),
		})

		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), auditWriteTimeout)
		defer cancel()
		if err := writer.CreateAuditLog(ctx, entry); err != nil {
			logger.Warn("failed to write audit log",
				zap.String("action", action),
				zap.String("resource", resource),
				zap.Error(err))
		}
	}
}
