package services

import (
	"context"
	"strings"

	"culturology/internal/config"
	"culturology/internal/models"
	"culturology/internal/observability"
	"culturology/internal/serviceinterfaces"
	contextutils "culturology/internal/utils"
)

// ChatServiceInterface defines the interface for culture chat
type ChatServiceInterface = serviceinterfaces.ChatService

// ChatService answers questions in the voice of a culture. It has no fallback:
// any provider failure is returned as ErrAIProviderUnavailable.
type ChatService struct {
	cultures  serviceinterfaces.CultureRepository
	ai        serviceinterfaces.AIClient
	templates *AITemplateManager
	cfg       config.AIConfig
	logger    *observability.Logger
}

var _ ChatServiceInterface = (*ChatService)(nil)

// NewChatService creates a new ChatService instance
func NewChatService(cultures serviceinterfaces.CultureRepository, ai serviceinterfaces.AIClient, templates *AITemplateManager, cfg config.AIConfig, logger *observability.Logger) *ChatService {
	return &ChatService{cultures: cultures, ai: ai, templates: templates, cfg: cfg, logger: logger}
}

// Ask returns the provider's trimmed answer to question
func (s *ChatService) Ask(ctx context.Context, slug, question string) (result string, err error) {
	ctx, span := observability.TraceChatFunction(ctx, "ask", observability.AttributeCultureSlug(slug))
	defer observability.FinishSpan(span, &err)

	question = strings.TrimSpace(question)
	if question == "" {
		return "", contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityInfo, "Question must not be empty", "")
	}

	culture, err := s.cultures.FindBySlug(ctx, slug)
	if err != nil {
		return "", err
	}

	prompt, err := s.templates.RenderTemplate(ChatPromptTemplate, AITemplateData{
		Context:  chatContext(culture),
		Question: question,
	})
	if err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to render chat prompt: %v", err)
	}

	answer, err := s.ai.Complete(ctx, serviceinterfaces.CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   s.cfg.ChatMaxTokens,
		Temperature: config.DefaultAITemperature,
		Purpose:     "chat",
	})
	if err != nil {
		s.logger.Warn(ctx, "Chat provider call failed", map[string]interface{}{
			"culture_slug": slug,
			"error":        err.Error(),
		})
		return "", contextutils.NewAppErrorWithCause(contextutils.ErrorCodeAIProviderUnavailable, contextutils.SeverityWarn,
			"AI provider unavailable", "", err)
	}

	return strings.TrimSpace(answer), nil
}

// chatContext joins the descriptive fields that are set, or names the culture when none are.
func chatContext(c *models.Culture) string {
	f := c.PromptFields()
	var parts []string
	for _, p := range []string{f.About, f.Traditions, f.Lifestyle} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "Information about " + c.Name
	}
	return strings.Join(parts, "\n\n")
}
