package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	contextutils "culturology/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedRouter(t *testing.T) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	router := gin.New()
	router.Use(otelgin.Middleware("test-service", otelgin.WithTracerProvider(tp)), SpanErrorMiddleware())
	return router, recorder
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}

func TestSpanErrorMiddleware_SuccessLeavesSpanUnset(t *testing.T) {
	router, recorder := newTracedRouter(t)
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestSpanErrorMiddleware_RecordsAppError(t *testing.T) {
	router, recorder := newTracedRouter(t)
	router.GET("/api/cultures/:slug", func(c *gin.Context) {
		_ = c.Error(contextutils.ErrCultureNotFound)
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cultures/atlantis", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	spans := recorder.Ended()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "Culture not found", span.Status().Description)

	attrs := spanAttrs(span)
	assert.Equal(t, "CULTURE_NOT_FOUND", attrs["error.code"].AsString())
	assert.Equal(t, "info", attrs["error.severity"].AsString())
	assert.Equal(t, "atlantis", attrs["culture.slug"].AsString())
	_, serverErr := attrs["error.server_error"]
	assert.False(t, serverErr)
}

func TestSpanErrorMiddleware_ServerError(t *testing.T) {
	router, recorder := newTracedRouter(t)
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := spanAttrs(spans[0])
	assert.True(t, attrs["error.server_error"].AsBool())
	assert.Equal(t, "error", attrs["error.severity"].AsString())
	assert.Equal(t, "server error", spans[0].Status().Description)
}

func TestGinMiddlewareWithErrorHandling_Chain(t *testing.T) {
	handlers := GinMiddlewareWithErrorHandling("svc")
	assert.Len(t, handlers, 2)
}
