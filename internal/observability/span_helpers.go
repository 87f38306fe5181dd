package observability

import (
	contextutils "culturology/internal/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// FinishSpan ends a span and records any error pointed to by errPtr. AppErrors also
// tag the span with their code, so a quiz span shows CULTURE_NOT_FOUND or
// AI_PROVIDER_UNAVAILABLE without opening the event.
// Use with a named error return: `defer observability.FinishSpan(span, &err)`
func FinishSpan(span trace.Span, errPtr *error) {
	if span == nil {
		return
	}
	if errPtr != nil && *errPtr != nil {
		err := *errPtr
		span.RecordError(err, trace.WithStackTrace(true))
		span.SetStatus(codes.Error, err.Error())
		var appErr *contextutils.AppError
		if contextutils.AsError(err, &appErr) {
			span.SetAttributes(attribute.String("error.code", string(appErr.Code)))
		}
	}
	span.End()
}
