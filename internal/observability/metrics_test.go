package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestQuizMetrics_RecordGeneration(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewQuizMetrics(mp)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordGeneration(ctx, "ai", "")
	m.RecordGeneration(ctx, "fallback", "provider_error")
	m.RecordGeneration(ctx, "fallback", "provider_error")
	m.RecordAIRequest(ctx, "quiz", 0.25, true)

	metrics := collect(t, reader)

	sum, ok := metrics["culturology.quiz.generations"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		source, _ := dp.Attributes.Value(attribute.Key("source"))
		counts[source.AsString()] += dp.Value
	}
	assert.Equal(t, int64(1), counts["ai"])
	assert.Equal(t, int64(2), counts["fallback"])

	hist, ok := metrics["culturology.ai.request.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestQuizMetrics_NilIsSafe(t *testing.T) {
	var m *QuizMetrics
	assert.NotPanics(t, func() {
		m.RecordGeneration(context.Background(), "ai", "")
		m.RecordAIRequest(context.Background(), "chat", 1, false)
	})
}
