package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/daycare-api/internal/dto"
	"github.com/noah-isme/daycare-api/internal/models"
	appErrors "github.com/noah-isme/daycare-api/pkg/errors"
	"github.com/noah-isme/daycare-api/pkg/response"
)

type attendanceService interface {
	CheckIn(ctx context.Context, childID string, actor *models.JWTClaims) (*models.Checkin, error)
	CheckOut(ctx context.Context, childID string, actor *models.JWTClaims) (*models.Checkin, error)
	ReportSick(ctx context.Context, childID string, req dto.SickRequest, actor *models.JWTClaims) error
	ClearSick(ctx context.Context, childID string, actor *models.JWTClaims) error
	SetVacation(ctx context.Context, childID string, req dto.VacationRequest, actor *models.JWTClaims) error
	ClearVacation(ctx context.Context, childID string, actor *models.JWTClaims) error
	StartSleep(ctx context.Context, childID, date string, actor *models.JWTClaims) error
	EndSleep(ctx context.Context, childID string, actor *models.JWTClaims) error
	SetSleepPlan(ctx context.Context, childID string, req dto.SleepPlanRequest, actor *models.JWTClaims) error
	SetDayReminder(ctx context.Context, childID string, req dto.DayReminderRequest, actor *models.JWTClaims) (string, error)
	SetPhoto(ctx context.Context, childID string, req dto.PhotoRequest, actor *models.JWTClaims) error
	Checkins(ctx context.Context, childID string, limit int, actor *models.JWTClaims) ([]models.Checkin, error)
}

// AttendanceHandler exposes writes to a child's day.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler builds the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// CheckIn godoc
// @Summary Mark child delivered
// @Tags Attendance
// @Produce json
// @Param id path string true "Child ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /children/{id}/checkin [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	entry, err := h.service.CheckIn(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// CheckOut godoc
// @Summary Mark child picked up
// @Tags Attendance
// @Produce json
// @Param id path string true "Child ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /children/{id}/checkout [post]
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	entry, err := h.service.CheckOut(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// ReportSick godoc
// @Summary Report sick day
// @Tags Attendance
// @Accept json
// @Param id path string true "Child ID"
// @Param payload body dto.SickRequest true "Sick day"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /children/{id}/sick [put]
func (h *AttendanceHandler) ReportSick(c *gin.Context) {
	var req dto.SickRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, h.service.ReportSick(c.Request.Context(), c.Param("id"), req, claimsFromContext(c)))
}

// ClearSick godoc
// @Summary Clear sick day
// @Tags Attendance
// @Param id path string true "Child ID"
// @Success 204 {object} response.Envelope
// @Router /children/{id}/sick [delete]
func (h *AttendanceHandler) ClearSick(c *gin.Context) {
	h.respond(c, h.service.ClearSick(c.Request.Context(), c.Param("id"), claimsFromContext(c)))
}

// SetVacation godoc
// @Summary Set vacation range
// @Tags Attendance
// @Accept json
// @Param id path string true "Child ID"
// @Param payload body dto.VacationRequest true "Vacation range"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /children/{id}/vacation [put]
func (h *AttendanceHandler) SetVacation(c *gin.Context) {
	var req dto.VacationRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, h.service.SetVacation(c.Request.Context(), c.Param("id"), req, claimsFromContext(c)))
}

// ClearVacation godoc
// @Summary Clear vacation range
// @Tags Attendance
// @Param id path string true "Child ID"
// @Success 204 {object} response.Envelope
// @Router /children/{id}/vacation [delete]
func (h *AttendanceHandler) ClearVacation(c *gin.Context) {
	h.respond(c, h.service.ClearVacation(c.Request.Context(), c.Param("id"), claimsFromContext(c)))
}

// StartSleep godoc
// @Summary Start sleep log
// @Tags Attendance
// @Param id path string true "Child ID"
// @Param date query string false "Selected day (YYYY-MM-DD)"
// @Success 204 {object} response.Envelope
// @Router /children/{id}/sleep/start [post]
func (h *AttendanceHandler) StartSleep(c *gin.Context) {
	h.respond(c, h.service.StartSleep(c.Request.Context(), c.Param("id"), c.Query("date"), claimsFromContext(c)))
}

// EndSleep godoc
// @Summary End sleep log
// @Tags Attendance
// @Param id path string true "Child ID"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /children/{id}/sleep/end [post]
func (h *AttendanceHandler) EndSleep(c *gin.Context) {
	h.respond(c, h.service.EndSleep(c.Request.Context(), c.Param("id"), claimsFromContext(c)))
}

// SetSleepPlan godoc
// @Summary Set planned sleep
// @Tags Attendance
// @Accept json
// @Param id path string true "Child ID"
// @Param payload body dto.SleepPlanRequest true "Sleep plan"
// @Success 204 {object} response.Envelope
// @Router /children/{id}/sleep-plan [put]
func (h *AttendanceHandler) SetSleepPlan(c *gin.Context) {
	var req dto.SleepPlanRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, h.service.SetSleepPlan(c.Request.Context(), c.Param("id"), req, claimsFromContext(c)))
}

// SetDayReminder godoc
// @Summary Set day reminder
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Child ID"
// @Param payload body dto.DayReminderRequest true "Reminder"
// @Success 200 {object} response.Envelope
// @Router /children/{id}/day-reminder [put]
func (h *AttendanceHandler) SetDayReminder(c *gin.Context) {
	var req dto.DayReminderRequest
	if !bindJSON(c, &req) {
		return
	}
	reminder, err := h.service.SetDayReminder(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"reminder": reminder}, nil)
}

// SetPhoto godoc
// @Summary Replace profile photo
// @Tags Attendance
// @Accept json
// @Param id path string true "Child ID"
// @Param payload body dto.PhotoRequest true "Photo data URL"
// @Success 204 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /children/{id}/photo [put]
func (h *AttendanceHandler) SetPhoto(c *gin.Context) {
	var req dto.PhotoRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, h.service.SetPhoto(c.Request.Context(), c.Param("id"), req, claimsFromContext(c)))
}

// Checkins godoc
// @Summary Status history
// @Tags Attendance
// @Produce json
// @Param id path string true "Child ID"
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /children/{id}/checkins [get]
func (h *AttendanceHandler) Checkins(c *gin.Context) {
	entries, err := h.service.Checkins(c.Request.Context(), c.Param("id"), queryInt(c, "limit", 100), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

func (h *AttendanceHandler) respond(c *gin.Context, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid payload"))
		return false
	}
	return true
}
