package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"culturology/internal/observability"
	contextutils "culturology/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorRecoveryMiddleware turns panics into a structured 500 response
func ErrorRecoveryMiddleware(logger *observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				stackTrace := string(debug.Stack())

				var panicErr error
				if e, ok := rec.(error); ok {
					panicErr = e
				} else {
					panicErr = fmt.Errorf("panic: %v", rec)
				}

				if logger != nil {
					logger.Error(c.Request.Context(), "Panic recovered", panicErr, map[string]interface{}{
						"http.method": c.Request.Method,
						"http.path":   c.Request.URL.Path,
						"stacktrace":  stackTrace,
					})
				}

				appErr := contextutils.NewAppErrorWithCause(
					contextutils.ErrorCodeInternalError,
					contextutils.SeverityFatal,
					"Internal server error",
					"A panic occurred while processing the request",
					panicErr,
				)

				// Add stack trace to error details in development
				if gin.Mode() == gin.DebugMode {
					appErr.Details = fmt.Sprintf("%s\nStack trace: %s", appErr.Details, stackTrace)
				}

				HandleAppError(c, appErr)
				c.Abort()
			}
		}()

		c.Next()
	}
}

// HandleAppError handles any AppError and sends appropriate HTTP response
func HandleAppError(c *gin.Context, err error) {
	if appErr, ok := err.(*contextutils.AppError); ok {
		StandardizeAppError(c, appErr)
	} else {
		// Fallback for non-AppError types
		StandardizeAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInternalError,
			contextutils.SeverityError,
			"Internal server error",
			err.Error(),
			err,
		))
	}
}

// StandardizeAppError sends a structured error response using AppError
func StandardizeAppError(c *gin.Context, err *contextutils.AppError) {
	statusCode := StatusForCode(err.Code)

	errorJSON := err.ToJSON()
	// clients of the original API read "detail"
	errorJSON["detail"] = err.Message

	_ = c.Error(err)
	c.JSON(statusCode, errorJSON)
}

// StatusForCode maps AppError codes to HTTP status codes
func StatusForCode(code contextutils.ErrorCode) int {
	switch code {
	// 4xx Client Errors
	case contextutils.ErrorCodeInvalidInput, contextutils.ErrorCodeMissingRequired,
		contextutils.ErrorCodeInvalidFormat, contextutils.ErrorCodeValidationFailed:
		return http.StatusBadRequest

	case contextutils.ErrorCodeUnauthorized:
		return http.StatusUnauthorized

	case contextutils.ErrorCodeRecordNotFound, contextutils.ErrorCodeCultureNotFound:
		return http.StatusNotFound

	case contextutils.ErrorCodeRecordExists:
		return http.StatusConflict

	// 5xx Server Errors
	case contextutils.ErrorCodeDatabaseConnection, contextutils.ErrorCodeAIProviderUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
