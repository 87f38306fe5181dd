package handlers

import (
	"net/http"

	"culturology/internal/config"
	"culturology/internal/models"
	"culturology/internal/observability"
	"culturology/internal/services"

	"github.com/gin-gonic/gin"
)

// MediaHandler handles media library requests
type MediaHandler struct {
	mediaService services.MediaServiceInterface
	logger       *observability.Logger
}

// NewMediaHandler creates a new MediaHandler instance
func NewMediaHandler(mediaService services.MediaServiceInterface, logger *observability.Logger) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		logger:       logger,
	}
}

// ListMedia handles GET /api/media
func (h *MediaHandler) ListMedia(c *gin.Context) {
	skip, limit, ok := ParseSkipLimit(c, config.DefaultMediaLimit)
	if !ok {
		return
	}

	items, err := h.mediaService.ListMedia(c.Request.Context(), skip, limit)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetMedia handles GET /api/media/:id
func (h *MediaHandler) GetMedia(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.mediaService.GetMedia(c.Request.Context(), id)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateMedia handles POST /api/media
func (h *MediaHandler) CreateMedia(c *gin.Context) {
	var req models.MediaItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	item, err := h.mediaService.CreateMedia(c.Request.Context(), req)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// DeleteMedia handles DELETE /api/media/:id
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.mediaService.DeleteMedia(c.Request.Context(), id); err != nil {
		HandleAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
