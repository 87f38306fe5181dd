package observability

import (
	"context"

	"culturology/internal/config"
	contextutils "culturology/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics initializes OpenTelemetry metrics
func InitMetrics(cfg *config.OpenTelemetryConfig) (result0 *sdkmetric.MeterProvider, err error) {
	ctx := context.Background()

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var exporter sdkmetric.Exporter
	switch cfg.Protocol {
	case "grpc":
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
			otlpmetricgrpc.WithHeaders(cfg.Headers),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exp, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp grpc metric exporter: %w", err)
		}
		exporter = exp
	case "http":
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.Endpoint),
			otlpmetrichttp.WithHeaders(cfg.Headers),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exp, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp http metric exporter: %w", err)
		}
		exporter = exp
	default:
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "unsupported otel protocol: %s", cfg.Protocol)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)
	return mp, nil
}

// QuizMetrics holds the instruments recorded by quiz generation and the AI client.
type QuizMetrics struct {
	generations metric.Int64Counter
	aiDuration  metric.Float64Histogram
}

// NewQuizMetrics creates the instruments on mp, or on the global meter provider when mp is nil.
func NewQuizMetrics(mp metric.MeterProvider) (*QuizMetrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	generations, err := meter.Int64Counter(
		"culturology.quiz.generations",
		metric.WithDescription("Quizzes generated, by source"),
	)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create quiz counter: %w", err)
	}

	aiDuration, err := meter.Float64Histogram(
		"culturology.ai.request.duration",
		metric.WithDescription("Duration of chat completion requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create ai duration histogram: %w", err)
	}

	return &QuizMetrics{generations: generations, aiDuration: aiDuration}, nil
}

// RecordGeneration counts one quiz. reason is empty for the AI path.
func (m *QuizMetrics) RecordGeneration(ctx context.Context, source, reason string) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("source", source)}
	if reason != "" {
		attrs = append(attrs, attribute.String("reason", reason))
	}
	m.generations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordAIRequest records how long a provider call took and whether it succeeded.
func (m *QuizMetrics) RecordAIRequest(ctx context.Context, purpose string, seconds float64, ok bool) {
	if m == nil {
		return
	}
	m.aiDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("purpose", purpose),
		attribute.Bool("success", ok),
	))
}
