package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/daycare-api/internal/dto"
	"github.com/noah-isme/daycare-api/internal/models"
	"github.com/noah-isme/daycare-api/pkg/response"
)

type reportService interface {
	GroupDay(ctx context.Context, group, date string, format dto.ReportFormat, actor *models.JWTClaims) (*dto.ReportFile, error)
}

// ReportHandler streams rendered group reports.
type ReportHandler struct {
	service reportService
}

// NewReportHandler builds the handler.
func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// GroupDay godoc
// @Summary Group day report
// @Description Resolved status, sleep and reminders of every child in the group
// @Tags Reports
// @Produce octet-stream
// @Param group path string true "Group"
// @Param date query string false "Day (YYYY-MM-DD)"
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /groups/{group}/report [get]
func (h *ReportHandler) GroupDay(c *gin.Context) {
	format := dto.ReportFormat(strings.ToLower(c.DefaultQuery("format", string(dto.ReportFormatCSV))))
	file, err := h.service.GroupDay(c.Request.Context(), c.Param("group"), c.Query("date"), format, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}
