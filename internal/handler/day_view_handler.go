package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/daycare-api/internal/dto"
	"github.com/noah-isme/daycare-api/internal/models"
	"github.com/noah-isme/daycare-api/pkg/response"
)

type dayViewService interface {
	Resolve(ctx context.Context, childID, date string, claims *models.JWTClaims) (*dto.DayViewResponse, error)
}

// DayViewHandler serves the resolved day of a child.
type DayViewHandler struct {
	service dayViewService
}

// NewDayViewHandler builds the handler.
func NewDayViewHandler(service dayViewService) *DayViewHandler {
	return &DayViewHandler{service: service}
}

// Get godoc
// @Summary Child day view
// @Description Status, sleep, reminders, announcements and the group's note and photos for one day
// @Tags Day view
// @Produce json
// @Param id path string true "Child ID"
// @Param date query string false "Day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /children/{id}/day [get]
func (h *DayViewHandler) Get(c *gin.Context) {
	view, err := h.service.Resolve(c.Request.Context(), c.Param("id"), c.Query("date"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
