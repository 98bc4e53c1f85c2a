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

type childService interface {
	List(ctx context.Context, group string, claims *models.JWTClaims) ([]models.Child, error)
	Authorize(ctx context.Context, id string, claims *models.JWTClaims) (*models.Child, error)
	Create(ctx context.Context, req dto.CreateChildRequest, actor *models.JWTClaims, meta models.RequestMeta) (*models.Child, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims, meta models.RequestMeta) error
	Parents(ctx context.Context, id string, claims *models.JWTClaims) ([]dto.ParentContact, error)
}

// ChildHandler exposes child records.
type ChildHandler struct {
	service childService
}

// NewChildHandler builds the handler.
func NewChildHandler(service childService) *ChildHandler {
	return &ChildHandler{service: service}
}

// List godoc
// @Summary List children
// @Description Staff see every child, parents only their own
// @Tags Children
// @Produce json
// @Param group query string false "Group filter"
// @Success 200 {object} response.Envelope
// @Router /children [get]
func (h *ChildHandler) List(c *gin.Context) {
	children, err := h.service.List(c.Request.Context(), c.Query("group"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, children, nil)
}

// Get godoc
// @Summary Get child
// @Tags Children
// @Produce json
// @Param id path string true "Child ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /children/{id} [get]
func (h *ChildHandler) Get(c *gin.Context) {
	child, err := h.service.Authorize(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, child, nil)
}

// Create godoc
// @Summary Register child
// @Tags Children
// @Accept json
// @Produce json
// @Param payload body dto.CreateChildRequest true "Child payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /children [post]
func (h *ChildHandler) Create(c *gin.Context) {
	var req dto.CreateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid payload"))
		return
	}
	child, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c), requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, child)
}

// Delete godoc
// @Summary Delete child
// @Tags Children
// @Param id path string true "Child ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /children/{id} [delete]
func (h *ChildHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c), requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Parents godoc
// @Summary Parent contacts
// @Description Contact details of the child's parents. Staff only.
// @Tags Children
// @Produce json
// @Param id path string true "Child ID"
// @Success 200 {object} response.Envelope
// @Router /children/{id}/parents [get]
func (h *ChildHandler) Parents(c *gin.Context) {
	contacts, err := h.service.Parents(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contacts, nil)
}
