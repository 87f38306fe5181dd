package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"culturology/internal/config"
	"culturology/internal/observability"
	"culturology/internal/serviceinterfaces"
	contextutils "culturology/internal/utils"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OpenAIRequest represents the request structure for OpenAI-compatible chat completions
type OpenAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Message represents a message in the OpenAI API format
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIResponse represents the response structure from OpenAI-compatible APIs
type OpenAIResponse struct {
	Choices []Choice  `json:"choices"`
	Error   *APIError `json:"error,omitempty"`
}

// Choice represents a choice in the OpenAI response
type Choice struct {
	Message Message `json:"message"`
}

// APIError represents an error returned in an otherwise well-formed response body
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// AIClientInterface is the provider client used by quiz generation and chat
type AIClientInterface = serviceinterfaces.AIClient

// AIClient calls an OpenAI-compatible provider behind a circuit breaker
type AIClient struct {
	httpClient *http.Client
	cfg        config.AIConfig
	breaker    *gobreaker.CircuitBreaker[string]
	metrics    *observability.QuizMetrics
	logger     *observability.Logger
}

var _ AIClientInterface = (*AIClient)(nil)

// NewAIClient creates a provider client. metrics may be nil.
func NewAIClient(cfg config.AIConfig, metrics *observability.QuizMetrics, logger *observability.Logger) *AIClient {
	c := &AIClient{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout + config.AIClientTimeoutSlack,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
			),
		},
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}

	threshold := cfg.BreakerFailureThreshold
	if threshold == 0 {
		threshold = config.DefaultBreakerFailureThreshold
	}
	openTimeout := cfg.BreakerOpenTimeout
	if openTimeout <= 0 {
		openTimeout = config.AIBreakerOpenTimeout
	}

	c.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "ai-provider",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// a caller hanging up says nothing about provider health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "AI provider circuit breaker state change", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	logger.Info(context.Background(), "AI client configured", map[string]interface{}{
		"provider": cfg.Provider,
		"base_url": cfg.BaseURL,
		"model":    cfg.Model,
		"api_key":  contextutils.MaskAPIKey(cfg.APIKey),
		"timeout":  cfg.RequestTimeout.String(),
	})

	return c
}

// Complete sends one user message and returns the first choice's content.
func (c *AIClient) Complete(ctx context.Context, req serviceinterfaces.CompletionRequest) (result string, err error) {
	ctx, span := observability.TraceAIFunction(ctx, "complete",
		attribute.String("ai.provider", c.cfg.Provider),
		observability.AttributeModel(c.cfg.Model),
		attribute.String("ai.purpose", req.Purpose),
		attribute.Int("prompt.length", len(req.Prompt)),
	)
	defer observability.FinishSpan(span, &err)

	if strings.TrimSpace(req.Prompt) == "" {
		return "", contextutils.WrapError(contextutils.ErrAIConfigInvalid, "prompt cannot be empty")
	}

	start := time.Now()
	result, err = c.breaker.Execute(func() (string, error) {
		return c.call(ctx, req)
	})
	c.metrics.RecordAIRequest(ctx, req.Purpose, time.Since(start).Seconds(), err == nil)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		span.SetAttributes(attribute.String("call.result", "breaker_open"))
		return "", contextutils.NewAppErrorWithCause(contextutils.ErrorCodeAIProviderUnavailable, contextutils.SeverityWarn,
			"AI provider unavailable", "circuit breaker is open", err)
	}
	return result, err
}

func (c *AIClient) call(ctx context.Context, req serviceinterfaces.CompletionRequest) (string, error) {
	span := trace.SpanFromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.cfg.Temperature
	}

	jsonData, err := json.Marshal(OpenAIRequest{
		Model:       c.cfg.Model,
		Messages:    []Message{{Role: "user", Content: req.Prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", contextutils.WrapErrorf(err, "failed to marshal request body")
	}

	url := c.cfg.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrAIConfigInvalid, "failed to create HTTP request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", config.ServiceName+"/1.0")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	c.logger.Debug(ctx, "Making AI HTTP request", map[string]interface{}{
		"url":     url,
		"model":   c.cfg.Model,
		"purpose": req.Purpose,
	})

	startTime := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	duration := time.Since(startTime)
	if err != nil {
		span.SetAttributes(attribute.String("call.result", "http_request_failed"), attribute.String("duration", duration.String()))
		return "", contextutils.NewAppErrorWithCause(contextutils.ErrorCodeAIProviderUnavailable, contextutils.SeverityWarn,
			"AI provider unavailable", fmt.Sprintf("HTTP request failed after %v", duration), err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn(ctx, "Failed to close response body", map[string]interface{}{"error": err.Error()})
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetAttributes(attribute.String("call.result", "body_read_failed"))
		return "", contextutils.NewAppErrorWithCause(contextutils.ErrorCodeAIProviderUnavailable, contextutils.SeverityWarn,
			"AI provider unavailable", "failed to read response body", err)
	}

	c.logger.Info(ctx, "AI HTTP request completed", map[string]interface{}{
		"duration":    duration.String(),
		"status_code": resp.StatusCode,
		"purpose":     req.Purpose,
	})

	if resp.StatusCode != http.StatusOK {
		span.SetAttributes(attribute.String("call.result", "http_error"), attribute.Int("status_code", resp.StatusCode))
		return "", contextutils.WrapErrorf(contextutils.ErrAIRequestFailed, "API request failed with status %d: %s",
			resp.StatusCode, truncate(string(body), 512))
	}

	var openAIResp OpenAIResponse
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		span.SetAttributes(attribute.String("call.result", "json_unmarshal_failed"))
		return "", contextutils.WrapErrorf(contextutils.ErrAIResponseInvalid, "failed to parse AI response as JSON: %v", err)
	}

	if openAIResp.Error != nil {
		span.SetAttributes(attribute.String("call.result", "api_error"), attribute.String("error_type", openAIResp.Error.Type))
		return "", contextutils.WrapErrorf(contextutils.ErrAIRequestFailed, "provider error: %s", openAIResp.Error.Message)
	}

	if len(openAIResp.Choices) == 0 {
		span.SetAttributes(attribute.String("call.result", "no_choices"))
		return "", contextutils.WrapError(contextutils.ErrAIResponseInvalid, "no choices in AI response")
	}

	content := openAIResp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		span.SetAttributes(attribute.String("call.result", "empty_content"))
		return "", contextutils.WrapError(contextutils.ErrAIResponseInvalid, "AI returned empty content")
	}

	span.SetAttributes(attribute.String("call.result", "success"), attribute.Int("content_length", len(content)))
	return content, nil
}

// Shutdown releases idle provider connections
func (c *AIClient) Shutdown(ctx context.Context) error {
	c.httpClient.CloseIdleConnections()
	c.logger.Info(ctx, "AI client shutdown completed")
	return nil
}

// BreakerState reports the circuit breaker state ("closed", "half-open", "open")
func (c *AIClient) BreakerState() string {
	return c.breaker.State().String()
}

// cleanJSONResponse strips markdown code fences around a JSON payload
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimSuffix(response, "```")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
		response = strings.TrimSuffix(response, "```")
	}

	return strings.TrimSpace(response)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
