package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/daycare-api/internal/dto"
	"github.com/noah-isme/daycare-api/internal/models"
	"github.com/noah-isme/daycare-api/pkg/response"
)

type daySummaryService interface {
	Get(ctx context.Context, group, date string, claims *models.JWTClaims) (*models.DaySummary, error)
	UpsertNote(ctx context.Context, group string, req dto.DaySummaryNoteRequest, actor *models.JWTClaims) (*models.DaySummary, error)
	AppendPhoto(ctx context.Context, group string, req dto.DaySummaryPhotoRequest, actor *models.JWTClaims) (*models.DaySummary, error)
}

// DaySummaryHandler exposes the per group note and photos of a day.
type DaySummaryHandler struct {
	service daySummaryService
}

// NewDaySummaryHandler builds the handler.
func NewDaySummaryHandler(service daySummaryService) *DaySummaryHandler {
	return &DaySummaryHandler{service: service}
}

// Get godoc
// @Summary Group day summary
// @Tags Day summaries
// @Produce json
// @Param group path string true "Group"
// @Param date query string false "Day (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /groups/{group}/day-summary [get]
func (h *DaySummaryHandler) Get(c *gin.Context) {
	summary, err := h.service.Get(c.Request.Context(), c.Param("group"), c.Query("date"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// UpsertNote godoc
// @Summary Set the day's note
// @Tags Day summaries
// @Accept json
// @Produce json
// @Param group path string true "Group"
// @Param payload body dto.DaySummaryNoteRequest true "Note"
// @Success 200 {object} response.Envelope
// @Router /groups/{group}/day-summary/note [put]
func (h *DaySummaryHandler) UpsertNote(c *gin.Context) {
	var req dto.DaySummaryNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	summary, err := h.service.UpsertNote(c.Request.Context(), c.Param("group"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// AppendPhoto godoc
// @Summary Add a photo to the day
// @Tags Day summaries
// @Accept json
// @Produce json
// @Param group path string true "Group"
// @Param payload body dto.DaySummaryPhotoRequest true "Photo"
// @Success 201 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /groups/{group}/day-summary/photos [post]
func (h *DaySummaryHandler) AppendPhoto(c *gin.Context) {
	var req dto.DaySummaryPhotoRequest
	if !bindJSON(c, &req) {
		return
	}
	summary, err := h.service.AppendPhoto(c.Request.Context(), c.Param("group"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, summary)
}
