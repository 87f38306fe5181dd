package serviceinterfaces

import "context"

// CompletionRequest is one single-turn prompt sent to the provider
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	// Purpose labels spans and metrics ("quiz", "chat")
	Purpose string
}

// AIClient sends prompts to an OpenAI-compatible chat completions endpoint
type AIClient interface {
	// Complete returns the first choice's content. Every failure is an
	// ErrAIProviderUnavailable, ErrAIRequestFailed or ErrAIResponseInvalid AppError.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ChatService answers free-form questions about a culture
type ChatService interface {
	Ask(ctx context.Context, slug, question string) (string, error)
}
