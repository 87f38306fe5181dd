package handlers

import (
	"net/http"

	"culturology/internal/observability"
	"culturology/internal/services"

	"github.com/gin-gonic/gin"
)

// ChatRequest is the body of POST /api/chat/:slug
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse carries the assistant's answer
type ChatResponse struct {
	Answer string `json:"answer"`
}

// ChatHandler answers questions in the voice of a culture
type ChatHandler struct {
	chatService services.ChatServiceInterface
	logger      *observability.Logger
}

// NewChatHandler creates a new ChatHandler instance
func NewChatHandler(chatService services.ChatServiceInterface, logger *observability.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Ask handles POST /api/chat/:slug
func (h *ChatHandler) Ask(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	answer, err := h.chatService.Ask(c.Request.Context(), c.Param("slug"), req.Question)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, ChatResponse{Answer: answer})
}
