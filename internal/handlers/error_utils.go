package handlers

import (
	"fmt"

	"culturology/internal/middleware"
	contextutils "culturology/internal/utils"

	"github.com/gin-gonic/gin"
)

// HandleAppError handles any AppError and sends appropriate HTTP response
func HandleAppError(c *gin.Context, err error) {
	middleware.HandleAppError(c, err)
}

// HandleValidationError handles input validation errors consistently
func HandleValidationError(c *gin.Context, field string, value interface{}, reason string) {
	HandleAppError(c, contextutils.NewAppError(
		contextutils.ErrorCodeInvalidInput,
		contextutils.SeverityWarn,
		fmt.Sprintf("Invalid %s", field),
		fmt.Sprintf("Value '%v' is invalid: %s", value, reason),
	))
}

// HandleBindError reports a body that could not be bound to the request type
func HandleBindError(c *gin.Context, err error) {
	HandleAppError(c, contextutils.NewAppErrorWithCause(
		contextutils.ErrorCodeInvalidFormat,
		contextutils.SeverityWarn,
		"Invalid request body",
		err.Error(),
		err,
	))
}
