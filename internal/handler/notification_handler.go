package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/daycare-api/internal/dto"
	"github.com/noah-isme/daycare-api/internal/models"
	"github.com/noah-isme/daycare-api/pkg/response"
)

type notificationService interface {
	Summary(ctx context.Context, childID, date string, claims *models.JWTClaims) (*dto.NotificationSummary, error)
	MarkSeen(ctx context.Context, childID string, claims *models.JWTClaims) (time.Time, error)
}

// NotificationHandler exposes the per child update badge.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler builds the handler.
func NewNotificationHandler(service notificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// Summary godoc
// @Summary Updates since last visit
// @Tags Notifications
// @Produce json
// @Param id path string true "Child ID"
// @Param date query string false "Day whose summary is checked (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /children/{id}/notifications [get]
func (h *NotificationHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), c.Param("id"), c.Query("date"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// MarkSeen godoc
// @Summary Mark updates as seen
// @Tags Notifications
// @Produce json
// @Param id path string true "Child ID"
// @Success 200 {object} response.Envelope
// @Router /children/{id}/notifications/seen [post]
func (h *NotificationHandler) MarkSeen(c *gin.Context) {
	seenAt, err := h.service.MarkSeen(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"lastSeenAt": seenAt}, nil)
}
