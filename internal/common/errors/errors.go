// Package errors provides standardized error handling for the blood-sea API.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden        ErrorCode = "FORBIDDEN"
	ErrCodeTokenExpired     ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTokenRevoked     ErrorCode = "TOKEN_REVOKED"
	ErrCodeTokenMalformed   ErrorCode = "TOKEN_MALFORMED"

	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	ErrCodeConflict ErrorCode = "CONFLICT"

	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeNoTokenAvailable       ErrorCode = "NO_TOKEN_AVAILABLE"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeStoreUnavailable    ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewUnauthorizedError creates a non-retryable authentication error.
func NewUnauthorizedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthorized,
		Message:   "Authentication required",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewForbiddenError creates a non-retryable authorization error.
func NewForbiddenError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeForbidden,
		Message:   "Insufficient permissions",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTokenExpiredError creates a non-retryable expired credential error.
func NewTokenExpiredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeTokenExpired,
		Message:   "Authentication token has expired",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTokenRevokedError creates a non-retryable revoked credential error.
func NewTokenRevokedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeTokenRevoked,
		Message:   "Authentication token has been revoked",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTokenMalformedError creates a non-retryable malformed credential error.
func NewTokenMalformedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTokenMalformed,
		Message:   "Authentication token is malformed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable resource not found error.
func NewNotFoundError(resource, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConflictError creates a non-retryable state conflict error.
func NewConflictError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConflict,
		Message:   "Request conflicts with current state",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError creates a non-retryable throttling error. RetryAfterSeconds
// is surfaced to callers in metadata.
func NewRateLimitedError(retryAfterSeconds int) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Too many requests, please try again later",
		Retryable: false,
		Metadata:  map[string]interface{}{"retryAfterSeconds": retryAfterSeconds},
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable request validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoTokenAvailableError creates a non-retryable error for recipients
// without a registered device token.
func NewNoTokenAvailableError(userID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoTokenAvailable,
		Message:   "Recipient has no registered device token",
		Details:   fmt.Sprintf("userId: %s", userID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable push delivery error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError creates a retryable document store error.
func NewStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Document store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamUnavailableError creates a retryable external service error.
func NewUpstreamUnavailableError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamUnavailable,
		Message:   fmt.Sprintf("External service '%s' unavailable", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Status Mapping
// ==========================

// httpStatusMapping maps internal error codes to HTTP-equivalent statuses.
var httpStatusMapping = map[ErrorCode]int{
	ErrCodeUnauthorized:           401,
	ErrCodeTokenExpired:           401,
	ErrCodeTokenRevoked:           401,
	ErrCodeTokenMalformed:         401,
	ErrCodeForbidden:              403,
	ErrCodeNotFound:               404,
	ErrCodeConflict:               409,
	ErrCodeRateLimited:            429,
	ErrCodeValidationFailed:       400,
	ErrCodeNoTokenAvailable:       404,
	ErrCodeNotificationSendFailed: 502,
	ErrCodeStoreUnavailable:       503,
	ErrCodeUpstreamUnavailable:    503,
	ErrCodeInternal:               500,
}

// HTTPStatus returns the HTTP-equivalent status for an error code.
// Unknown codes map to 500.
func HTTPStatus(code ErrorCode) int {
	if status, exists := httpStatusMapping[code]; exists {
		return status
	}
	return 500
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeNotificationSendFailed, ErrCodeStoreUnavailable, ErrCodeUpstreamUnavailable:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TOKEN_") || strings.Contains(codeStr, "UNAUTHORIZED") || strings.Contains(codeStr, "FORBIDDEN"):
		return "AUTH"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "NO_TOKEN"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "RATE_LIMITED"):
		return "REQUEST"
	case strings.Contains(codeStr, "STORE") || strings.Contains(codeStr, "UPSTREAM"):
		return "INFRASTRUCTURE"
	default:
		return "OTHER"
	}
}
