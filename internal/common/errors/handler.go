// internal/common/errors/handler.go
package errors

import (
	"context"
	"errors"
	"time"
)

// ErrorHandler normalizes arbitrary errors into the standard response shape
// used by every HTTP handler.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Classified is the wire-ready view of a failure: the HTTP status to send
// and the stable machine code plus human message for the body.
type Classified struct {
	Status  int
	Code    ErrorCode
	Message string
}

// Classify normalizes an error and decides the response status. Client
// mistakes (4xx) log at warn, infrastructure failures at error.
func (h *ErrorHandler) Classify(ctx context.Context, err error) Classified {
	stdErr := h.normalizeError(err)

	fields := map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"category":  GetErrorCategory(stdErr.Code),
		"retryable": stdErr.Retryable,
		"details":   stdErr.Details,
	}

	status := HTTPStatus(stdErr.Code)
	if status >= 500 {
		h.logger.Error("request failed", fields)
	} else {
		h.logger.Warn("request rejected", fields)
	}

	return Classified{
		Status:  status,
		Code:    stdErr.Code,
		Message: stdErr.Message,
	}
}

// normalizeError ensures we always have a StandardError. Context deadline
// expiry maps to upstream unavailability rather than an internal fault.
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &StandardError{
			Code:      ErrCodeUpstreamUnavailable,
			Message:   "Upstream call timed out",
			Details:   err.Error(),
			Retryable: true,
			Timestamp: time.Now().UTC(),
		}
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
