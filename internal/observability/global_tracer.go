package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "culturology"

var globalTracer trace.Tracer

// InitGlobalTracer initializes the global tracer for the application.
func InitGlobalTracer() {
	globalTracer = otel.Tracer(instrumentationName)
}

// GetGlobalTracer returns the global tracer instance for the application.
func GetGlobalTracer() trace.Tracer {
	if globalTracer == nil {
		globalTracer = otel.Tracer(instrumentationName)
	}
	return globalTracer
}

// TraceFunction starts a new span named "<service>.<function>".
func TraceFunction(ctx context.Context, serviceName, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := GetGlobalTracer()
	spanName := fmt.Sprintf("%s.%s", serviceName, functionName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attributes...))
}

// TraceQuizFunction starts a new span for a quiz service function.
func TraceQuizFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "quiz", functionName, attributes...)
}

// TraceAIFunction starts a new span for an AI client function.
func TraceAIFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "ai", functionName, attributes...)
}

// TraceCultureFunction starts a new span for a culture service function.
func TraceCultureFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "culture", functionName, attributes...)
}

// TraceMediaFunction starts a new span for a media service function.
func TraceMediaFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "media", functionName, attributes...)
}

// TraceChatFunction starts a new span for a chat service function.
func TraceChatFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "chat", functionName, attributes...)
}

// TraceHandlerFunction starts a new span for a handler function.
func TraceHandlerFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "handler", functionName, attributes...)
}

// TraceDatabaseFunction starts a new span for a database function.
func TraceDatabaseFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "database", functionName, attributes...)
}

// AttributeCultureSlug returns a tracing attribute for a culture slug.
func AttributeCultureSlug(slug string) attribute.KeyValue {
	return attribute.String("culture.slug", slug)
}

// AttributeCultureID returns a tracing attribute for a culture ID.
func AttributeCultureID(id int) attribute.KeyValue {
	return attribute.Int("culture.id", id)
}

// AttributeQuizSource returns a tracing attribute for where a quiz came from.
func AttributeQuizSource(source string) attribute.KeyValue {
	return attribute.String("quiz.source", source)
}

// AttributeID returns a tracing attribute for a generic record ID.
func AttributeID(id int) attribute.KeyValue {
	return attribute.Int("record.id", id)
}

// AttributeSkip returns a tracing attribute for an offset value.
func AttributeSkip(skip int) attribute.KeyValue {
	return attribute.Int("skip", skip)
}

// AttributeLimit returns a tracing attribute for a limit value.
func AttributeLimit(limit int) attribute.KeyValue {
	return attribute.Int("limit", limit)
}

// AttributeSearch returns a tracing attribute for a search value.
func AttributeSearch(search string) attribute.KeyValue {
	return attribute.String("search", search)
}

// AttributeModel returns a tracing attribute for the AI model name.
func AttributeModel(model string) attribute.KeyValue {
	return attribute.String("ai.model", model)
}
