package handlers

import (
	"net/http"

	"culturology/internal/config"
	"culturology/internal/models"
	"culturology/internal/observability"
	"culturology/internal/services"

	"github.com/gin-gonic/gin"
)

// CultureHandler handles culture related HTTP requests
type CultureHandler struct {
	cultureService services.CultureServiceInterface
	logger         *observability.Logger
}

// NewCultureHandler creates a new CultureHandler instance
func NewCultureHandler(cultureService services.CultureServiceInterface, logger *observability.Logger) *CultureHandler {
	return &CultureHandler{
		cultureService: cultureService,
		logger:         logger,
	}
}

// ListCultures handles GET /api/cultures
func (h *CultureHandler) ListCultures(c *gin.Context) {
	skip, limit, ok := ParseSkipLimit(c, config.DefaultCultureListLimit)
	if !ok {
		return
	}

	cultures, err := h.cultureService.ListCultures(c.Request.Context(), skip, limit)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, cultures)
}

// SearchCultures handles GET /api/cultures/search
func (h *CultureHandler) SearchCultures(c *gin.Context) {
	skip, limit, ok := ParseSkipLimit(c, config.DefaultCultureSearchLimit)
	if !ok {
		return
	}
	filters := ParseFilters(c, "query", "region")

	cultures, err := h.cultureService.SearchCultures(c.Request.Context(), filters["query"], filters["region"], skip, limit)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, cultures)
}

// GetCulture handles GET /api/cultures/:slug
func (h *CultureHandler) GetCulture(c *gin.Context) {
	culture, err := h.cultureService.FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, culture)
}

// CreateCulture handles POST /api/cultures
func (h *CultureHandler) CreateCulture(c *gin.Context) {
	var req models.CultureInput
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	culture, err := h.cultureService.CreateCulture(c.Request.Context(), req)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, culture)
}

// UpdateCulture handles PUT /api/cultures/:slug
func (h *CultureHandler) UpdateCulture(c *gin.Context) {
	var req models.CulturePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	culture, err := h.cultureService.UpdateCulture(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, culture)
}

// DeleteCulture handles DELETE /api/cultures/:slug
func (h *CultureHandler) DeleteCulture(c *gin.Context) {
	if err := h.cultureService.DeleteCulture(c.Request.Context(), c.Param("slug")); err != nil {
		HandleAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MapPoints handles GET /api/map
func (h *CultureHandler) MapPoints(c *gin.Context) {
	points, err := h.cultureService.MapPoints(c.Request.Context())
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}
