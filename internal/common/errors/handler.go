// internal/common/errors/handler.go
package errors

import (
	"net/http"
	"time"
)

// ErrorHandler normalizes errors and renders standardized HTTP responses.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Response is the JSON error body every endpoint returns on failure.
type Response struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
}

// Normalize ensures we always have a StandardError.
func (h *ErrorHandler) Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Render converts an error to an HTTP status and response body, logging
// server-side failures.
func (h *ErrorHandler) Render(err error) (int, Response) {
	stdErr := h.Normalize(err)
	status := HTTPStatus(stdErr.Code)
	if status >= http.StatusInternalServerError && h.logger != nil {
		h.logger.Error("request failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"message":   stdErr.Message,
			"details":   stdErr.Details,
			"retryable": stdErr.Retryable,
		})
	}
	return status, Response{
		Code:      stdErr.Code,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
	}
}

// HTTPStatus maps standardized error codes to HTTP status codes.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeSchemaInvalid:
		return http.StatusBadRequest
	case ErrCodePendingUpload:
		return http.StatusConflict
	case ErrCodeEventAccessDenied:
		return http.StatusForbidden
	case ErrCodeEventNotFound:
		return http.StatusNotFound
	case ErrCodeRegistrationClosed:
		return http.StatusGone
	case ErrCodeIndexOutOfRange:
		// A builder bug, not user input; surface loudly.
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
