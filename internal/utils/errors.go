// Package contextutils holds the culturology API's error taxonomy. Every error a
// handler can surface is an *AppError whose Code is stable for clients and whose
// Severity decides the log level.
package contextutils

import (
	"fmt"
	"strings"
)

// ErrorCode is the machine-readable code returned in error bodies
type ErrorCode string

// Storage
const (
	ErrorCodeDatabaseConnection  ErrorCode = "DATABASE_CONNECTION_ERROR"
	ErrorCodeDatabaseQuery       ErrorCode = "DATABASE_QUERY_ERROR"
	ErrorCodeDatabaseTransaction ErrorCode = "DATABASE_TRANSACTION_ERROR"
	ErrorCodeRecordNotFound      ErrorCode = "RECORD_NOT_FOUND"
	// ErrorCodeRecordExists is a unique key collision, e.g. a second culture with the same slug
	ErrorCodeRecordExists ErrorCode = "RECORD_ALREADY_EXISTS"
)

// Request
const (
	ErrorCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrorCodeMissingRequired  ErrorCode = "MISSING_REQUIRED_FIELD"
	ErrorCodeInvalidFormat    ErrorCode = "INVALID_FORMAT"
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
)

// Cultures and the quiz engine
const (
	// ErrorCodeCultureNotFound means no culture has the requested slug or id
	ErrorCodeCultureNotFound ErrorCode = "CULTURE_NOT_FOUND"

	// ErrorCodeAIProviderUnavailable covers transport failures, timeouts and an open breaker
	ErrorCodeAIProviderUnavailable ErrorCode = "AI_PROVIDER_UNAVAILABLE"
	// ErrorCodeAIRequestFailed is a non-200 or an error object from the provider
	ErrorCodeAIRequestFailed ErrorCode = "AI_REQUEST_FAILED"
	// ErrorCodeAIResponseInvalid is a reply that is not a usable quiz or chat answer
	ErrorCodeAIResponseInvalid ErrorCode = "AI_RESPONSE_INVALID"
	ErrorCodeAIConfigInvalid   ErrorCode = "AI_CONFIG_INVALID"

	// ErrorCodeConfigurationMissing stops startup: missing settings, a broken fallback catalog
	ErrorCodeConfigurationMissing ErrorCode = "CONFIGURATION_MISSING"
	ErrorCodeInternalError        ErrorCode = "INTERNAL_SERVER_ERROR"
)

// SeverityLevel maps to the log level an error is reported at
type SeverityLevel string

const (
	SeverityInfo  SeverityLevel = "info"
	SeverityWarn  SeverityLevel = "warn"
	SeverityError SeverityLevel = "error"
	// SeverityFatal errors are never retryable
	SeverityFatal SeverityLevel = "fatal"
)

// AppError is a coded error with optional details and cause
type AppError struct {
	Code     ErrorCode
	Severity SeverityLevel
	Message  string
	Details  string
	Cause    error
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError with the same code, so errors.Is works against the sentinels below
func (e *AppError) Is(target error) bool {
	if appErr, ok := target.(*AppError); ok {
		return e.Code == appErr.Code
	}
	return false
}

func sentinel(code ErrorCode, severity SeverityLevel, message string) *AppError {
	return &AppError{Code: code, Severity: severity, Message: message}
}

var (
	ErrDatabaseConnection  = sentinel(ErrorCodeDatabaseConnection, SeverityError, "Database connection failed")
	ErrDatabaseQuery       = sentinel(ErrorCodeDatabaseQuery, SeverityError, "Database query failed")
	ErrDatabaseTransaction = sentinel(ErrorCodeDatabaseTransaction, SeverityError, "Database transaction failed")
	ErrRecordNotFound      = sentinel(ErrorCodeRecordNotFound, SeverityInfo, "Record not found")
	ErrRecordExists        = sentinel(ErrorCodeRecordExists, SeverityInfo, "Record already exists")

	ErrInvalidInput     = sentinel(ErrorCodeInvalidInput, SeverityWarn, "Invalid input")
	ErrValidationFailed = sentinel(ErrorCodeValidationFailed, SeverityWarn, "Validation failed")

	ErrCultureNotFound       = sentinel(ErrorCodeCultureNotFound, SeverityInfo, "Culture not found")
	ErrAIProviderUnavailable = sentinel(ErrorCodeAIProviderUnavailable, SeverityError, "AI provider unavailable")
	ErrAIRequestFailed       = sentinel(ErrorCodeAIRequestFailed, SeverityError, "AI request failed")
	ErrAIResponseInvalid     = sentinel(ErrorCodeAIResponseInvalid, SeverityError, "AI response invalid")
	ErrAIConfigInvalid       = sentinel(ErrorCodeAIConfigInvalid, SeverityError, "AI configuration invalid")

	ErrConfigurationMissing = sentinel(ErrorCodeConfigurationMissing, SeverityFatal, "Required configuration is missing")
	ErrInternalError        = sentinel(ErrorCodeInternalError, SeverityError, "Internal server error")
)

// NewAppError creates an AppError without a cause
func NewAppError(code ErrorCode, severity SeverityLevel, message, details string) *AppError {
	return &AppError{Code: code, Severity: severity, Message: message, Details: details}
}

// NewAppErrorWithCause creates an AppError that unwraps to cause
func NewAppErrorWithCause(code ErrorCode, severity SeverityLevel, message, details string, cause error) *AppError {
	return &AppError{Code: code, Severity: severity, Message: message, Details: details, Cause: cause}
}

// WrapError adds context to err. An AppError keeps its code and severity; anything else becomes an internal error.
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	return wrap(err, context, err)
}

// WrapErrorf is WrapError with a format. A %w verb keeps the formatted error in the Unwrap chain.
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if strings.Contains(format, "%w") {
		wrapped := fmt.Errorf(format, args...)
		return wrap(err, wrapped.Error(), wrapped)
	}
	return wrap(err, fmt.Sprintf(format, args...), err)
}

func wrap(err error, message string, cause error) *AppError {
	out := &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  message,
		Details:  err.Error(),
		Cause:    cause,
	}
	if appErr, ok := err.(*AppError); ok {
		out.Code = appErr.Code
		out.Severity = appErr.Severity
	}
	return out
}

// ErrorWithContextf creates an internal error from a format
func ErrorWithContextf(format string, args ...interface{}) error {
	return &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	}
}

// IsError reports whether err is an AppError carrying target's code
func IsError(err error, target *AppError) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == target.Code
	}
	return false
}

// AsError stores err in target when it is an AppError
func AsError(err error, target **AppError) bool {
	if appErr, ok := err.(*AppError); ok {
		*target = appErr
		return true
	}
	return false
}

// GetErrorCode returns err's code, or ErrorCodeInternalError for plain errors
func GetErrorCode(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ErrorCodeInternalError
}

var retryableCodes = map[ErrorCode]bool{
	ErrorCodeDatabaseConnection:    true,
	ErrorCodeAIProviderUnavailable: true,
}

// IsRetryable reports whether a client may retry the same request later
func IsRetryable(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return retryableCodes[appErr.Code] && appErr.Severity != SeverityFatal
	}
	return false
}

// ToJSON renders the error body. The cause is included only for error and fatal severities.
func (e *AppError) ToJSON() map[string]interface{} {
	result := map[string]interface{}{
		"code":      string(e.Code),
		"message":   e.Message,
		"severity":  string(e.Severity),
		"error":     e.Message,
		"retryable": IsRetryable(e),
	}
	if e.Details != "" {
		result["details"] = e.Details
	}
	if e.Cause != nil && (e.Severity == SeverityError || e.Severity == SeverityFatal) {
		result["cause"] = e.Cause.Error()
	}
	return result
}
