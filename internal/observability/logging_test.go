package observability

import (
	"context"
	"errors"
	"testing"

	"culturology/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogWithContextAddsTraceInfo(t *testing.T) {
	// Setup OpenTelemetry
	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	tracer := tp.Tracer("test-tracer")

	// Setup Zap observer
	core, observedLogs := observer.New(zap.InfoLevel)
	zapLogger := zap.New(core)
	logger := &Logger{Logger: zapLogger}

	// Start a span
	ctx, span := tracer.Start(context.Background(), "test-span")
	defer span.End()

	// Log something with the context
	logger.Info(ctx, "test message", nil)

	// Verify log entry
	requireLogs := observedLogs.All()
	assert.Equal(t, 1, len(requireLogs), "Expected 1 log entry")

	entry := requireLogs[0]
	assert.Equal(t, "test message", entry.Message)

	// Check for trace_id and span_id fields
	fields := entry.ContextMap()
	assert.Contains(t, fields, "trace_id", "Log should contain trace_id")
	assert.Contains(t, fields, "span_id", "Log should contain span_id")

	// Verify values match the span
	spanContext := span.SpanContext()
	assert.Equal(t, spanContext.TraceID().String(), fields["trace_id"])
	assert.Equal(t, spanContext.SpanID().String(), fields["span_id"])
}

func TestLogWithContextNoSpan(t *testing.T) {
	// Setup Zap observer
	core, observedLogs := observer.New(zap.InfoLevel)
	zapLogger := zap.New(core)
	logger := &Logger{Logger: zapLogger}

	// Log without a span
	logger.Info(context.Background(), "test message", nil)

	// Verify log entry
	requireLogs := observedLogs.All()
	assert.Equal(t, 1, len(requireLogs), "Expected 1 log entry")

	entry := requireLogs[0]
	fields := entry.ContextMap()

	// Should not contain trace info
	assert.NotContains(t, fields, "trace_id")
	assert.NotContains(t, fields, "span_id")
}

func TestLoggerErrorAddsErrorField(t *testing.T) {
	core, observedLogs := observer.New(zap.DebugLevel)
	logger := &Logger{Logger: zap.New(core)}

	fields := map[string]interface{}{"culture.slug": "maori"}
	logger.Error(context.Background(), "provider failed", errors.New("boom"), fields)

	entries := observedLogs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
	assert.Equal(t, "maori", entries[0].ContextMap()["culture.slug"])
	assert.NotContains(t, fields, "error", "caller's field map is left untouched")
}

func TestLoggerRespectsLevel(t *testing.T) {
	core, observedLogs := observer.New(zap.InfoLevel)
	logger := &Logger{Logger: zap.New(core)}

	logger.Debug(context.Background(), "hidden")
	logger.Warn(context.Background(), "shown", map[string]interface{}{"a": 1}, map[string]interface{}{"b": 2})

	entries := observedLogs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0].Message)
	assert.Contains(t, entries[0].ContextMap(), "a")
	assert.Contains(t, entries[0].ContextMap(), "b")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("chatty"))
}

func TestNewLogger_DisabledIsNop(t *testing.T) {
	logger := NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	require.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))

	assert.NotNil(t, NewLogger(nil))
}
