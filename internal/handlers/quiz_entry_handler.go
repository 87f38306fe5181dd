package handlers

import (
	"net/http"
	"strconv"

	"culturology/internal/config"
	"culturology/internal/models"
	"culturology/internal/observability"
	"culturology/internal/services"

	"github.com/gin-gonic/gin"
)

// QuizEntryHandler handles CRUD for stored quiz entries
type QuizEntryHandler struct {
	entryService services.QuizEntryServiceInterface
	logger       *observability.Logger
}

// NewQuizEntryHandler creates a new QuizEntryHandler instance
func NewQuizEntryHandler(entryService services.QuizEntryServiceInterface, logger *observability.Logger) *QuizEntryHandler {
	return &QuizEntryHandler{
		entryService: entryService,
		logger:       logger,
	}
}

// ListEntries handles GET /api/quiz
func (h *QuizEntryHandler) ListEntries(c *gin.Context) {
	skip, limit, ok := ParseSkipLimit(c, config.DefaultQuizEntryLimit)
	if !ok {
		return
	}

	var cultureID *int
	if raw, exists := ParseFilters(c, "culture_id")["culture_id"]; exists {
		id, err := strconv.Atoi(raw)
		if err != nil {
			HandleValidationError(c, "culture_id", raw, "must be an integer")
			return
		}
		cultureID = &id
	}

	entries, err := h.entryService.ListEntries(c.Request.Context(), cultureID, skip, limit)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetEntry handles GET /api/quiz/:id
func (h *QuizEntryHandler) GetEntry(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	entry, err := h.entryService.GetEntry(c.Request.Context(), id)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// CreateEntry handles POST /api/quiz
func (h *QuizEntryHandler) CreateEntry(c *gin.Context) {
	var req models.QuizEntryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	entry, err := h.entryService.CreateEntry(c.Request.Context(), req)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UpdateEntry handles PUT /api/quiz/:id
func (h *QuizEntryHandler) UpdateEntry(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.QuizEntryPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	entry, err := h.entryService.UpdateEntry(c.Request.Context(), id, req)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteEntry handles DELETE /api/quiz/:id
func (h *QuizEntryHandler) DeleteEntry(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.entryService.DeleteEntry(c.Request.Context(), id); err != nil {
		HandleAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
