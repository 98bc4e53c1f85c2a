package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/daycare-api/internal/dto"
	"github.com/noah-isme/daycare-api/internal/models"
	"github.com/noah-isme/daycare-api/pkg/response"
)

type announcementService interface {
	List(ctx context.Context, group string, claims *models.JWTClaims) ([]models.GroupAnnouncement, error)
	Create(ctx context.Context, group string, req dto.AnnouncementRequest, actor *models.JWTClaims) (*models.GroupAnnouncement, error)
	Update(ctx context.Context, id string, req dto.AnnouncementRequest, actor *models.JWTClaims) (*models.GroupAnnouncement, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
}

// AnnouncementHandler exposes group announcements.
type AnnouncementHandler struct {
	service announcementService
}

// NewAnnouncementHandler builds the handler.
func NewAnnouncementHandler(service announcementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: service}
}

// List godoc
// @Summary List group announcements
// @Description Every announcement of the group in creation order, without date filtering
// @Tags Announcements
// @Produce json
// @Param group path string true "Group"
// @Success 200 {object} response.Envelope
// @Router /groups/{group}/announcements [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Param("group"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Create announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param group path string true "Group"
// @Param payload body dto.AnnouncementRequest true "Announcement"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /groups/{group}/announcements [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req dto.AnnouncementRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.Create(c.Request.Context(), c.Param("group"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param id path string true "Announcement ID"
// @Param payload body dto.AnnouncementRequest true "Announcement"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /announcements/{id} [put]
func (h *AnnouncementHandler) Update(c *gin.Context) {
	var req dto.AnnouncementRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete announcement
// @Tags Announcements
// @Param id path string true "Announcement ID"
// @Success 204 {object} response.Envelope
// @Router /announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
