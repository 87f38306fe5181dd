package middleware

import (
	"bytes"
	"io"
	"net/http"

	"culturology/internal/observability"
	contextutils "culturology/internal/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// RequestValidationMiddleware validates POST/PUT/PATCH bodies against the request schema
// documented for the matched route. Routes without a documented body pass through.
func RequestValidationMiddleware(loader *SchemaLoader, logger *observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch {
			c.Next()
			return
		}

		schemaName := loader.RequestSchemaFor(method, c.FullPath())
		if schemaName == "" {
			c.Next()
			return
		}

		ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "request_validation",
			attribute.String("http.route", c.FullPath()),
			attribute.String("schema.name", schemaName),
		)
		defer span.End()

		body, err := c.GetRawData()
		if err != nil {
			HandleAppError(c, contextutils.NewAppErrorWithCause(
				contextutils.ErrorCodeInvalidInput,
				contextutils.SeverityWarn,
				"Failed to read request body",
				err.Error(),
				err,
			))
			c.Abort()
			return
		}
		// handlers bind the body again
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		if len(bytes.TrimSpace(body)) == 0 {
			HandleAppError(c, contextutils.NewAppError(
				contextutils.ErrorCodeMissingRequired,
				contextutils.SeverityWarn,
				"Request body is required",
				schemaName,
			))
			c.Abort()
			return
		}

		if err := loader.ValidateJSON(body, schemaName); err != nil {
			logger.Warn(ctx, "Request validation failed", map[string]interface{}{
				"http.method": method,
				"http.route":  c.FullPath(),
				"schema_name": schemaName,
				"error":       err.Error(),
			})
			span.SetAttributes(attribute.Bool("validation.failed", true))
			HandleAppError(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}
