package services

import (
	"context"

	"culturology/internal/config"
	"culturology/internal/models"
	"culturology/internal/observability"
	"culturology/internal/serviceinterfaces"
	contextutils "culturology/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// QuizGeneratorInterface defines the interface for quiz generation
type QuizGeneratorInterface = serviceinterfaces.QuizGenerator

// QuizGenerator builds five-question quizzes, from the AI provider when it
// answers well and from the fallback catalog otherwise.
type QuizGenerator struct {
	cultures  serviceinterfaces.CultureRepository
	ai        serviceinterfaces.AIClient
	templates *AITemplateManager
	catalog   *FallbackCatalog
	sampler   *FallbackSampler
	cfg       config.AIConfig
	metrics   *observability.QuizMetrics
	logger    *observability.Logger
}

var _ QuizGeneratorInterface = (*QuizGenerator)(nil)

// NewQuizGenerator wires a generator. metrics may be nil.
func NewQuizGenerator(
	cultures serviceinterfaces.CultureRepository,
	ai serviceinterfaces.AIClient,
	templates *AITemplateManager,
	catalog *FallbackCatalog,
	sampler *FallbackSampler,
	cfg config.AIConfig,
	metrics *observability.QuizMetrics,
	logger *observability.Logger,
) *QuizGenerator {
	return &QuizGenerator{
		cultures:  cultures,
		ai:        ai,
		templates: templates,
		catalog:   catalog,
		sampler:   sampler,
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger,
	}
}

// Generate returns a quiz for the culture. Only a missing culture or a repository
// failure is an error; provider failures fall back to the catalog.
func (g *QuizGenerator) Generate(ctx context.Context, slug string) (result *serviceinterfaces.QuizResult, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "generate", observability.AttributeCultureSlug(slug))
	defer observability.FinishSpan(span, &err)

	culture, err := g.cultures.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	fields := culture.PromptFields()

	items, aiErr := g.fromAI(ctx, fields)
	if aiErr == nil {
		span.SetAttributes(observability.AttributeQuizSource(string(serviceinterfaces.QuizSourceAI)))
		g.metrics.RecordGeneration(ctx, string(serviceinterfaces.QuizSourceAI), "ok")
		return &serviceinterfaces.QuizResult{Source: serviceinterfaces.QuizSourceAI, Items: items}, nil
	}

	reason := string(contextutils.GetErrorCode(aiErr))
	span.RecordError(aiErr)
	span.SetAttributes(
		observability.AttributeQuizSource(string(serviceinterfaces.QuizSourceFallback)),
		attribute.String("quiz.fallback_reason", reason),
	)
	g.logger.Warn(ctx, "AI quiz generation failed, using fallback catalog", map[string]interface{}{
		"culture_slug": slug,
		"reason":       reason,
		"error":        aiErr.Error(),
	})

	items, err = g.catalog.Build(fields, g.sampler.Sample(g.catalog.Len(), QuizLength))
	if err != nil {
		return nil, err
	}
	g.metrics.RecordGeneration(ctx, string(serviceinterfaces.QuizSourceFallback), reason)
	return &serviceinterfaces.QuizResult{Source: serviceinterfaces.QuizSourceFallback, Items: items}, nil
}

func (g *QuizGenerator) fromAI(ctx context.Context, fields models.PromptFields) ([]models.QuizItem, error) {
	prompt, err := g.templates.RenderTemplate(QuizPromptTemplate, AITemplateData{Culture: fields})
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrAIConfigInvalid, "failed to render quiz prompt: %v", err)
	}

	raw, err := g.ai.Complete(ctx, serviceinterfaces.CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: config.DefaultAITemperature,
		Purpose:     "quiz",
	})
	if err != nil {
		return nil, err
	}

	return ParseQuizPayload(raw)
}
