// Package errors provides standardized error handling for the service layer.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Form engine / submission errors.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodePendingUpload    ErrorCode = "PENDING_UPLOAD"
	ErrCodeIndexOutOfRange  ErrorCode = "INDEX_OUT_OF_RANGE"
	ErrCodeSchemaInvalid    ErrorCode = "SCHEMA_INVALID"

	// Event lifecycle errors.
	ErrCodeEventNotFound      ErrorCode = "EVENT_NOT_FOUND"
	ErrCodeEventAccessDenied  ErrorCode = "EVENT_ACCESS_DENIED"
	ErrCodeRegistrationClosed ErrorCode = "REGISTRATION_CLOSED"

	// External collaborator errors.
	ErrCodeDatabaseQueryFailed    ErrorCode = "DATABASE_QUERY_FAILED"
	ErrCodeDatabaseInsertFailed   ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeStorageUploadFailed    ErrorCode = "STORAGE_UPLOAD_FAILED"
	ErrCodeSearchQueryFailed      ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeAssistantUnavailable   ErrorCode = "ASSISTANT_UNAVAILABLE"
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

// NewValidationFailedError creates a non-retryable submission validation
// error. The filler must correct the form; nothing is written.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "A required visible field is empty",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPendingUploadError creates a non-retryable pending upload error.
// Submit must wait until the in-flight upload resolves.
func NewPendingUploadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePendingUpload,
		Message:   "A file upload is still in progress",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaInvalidError creates a non-retryable schema document error.
func NewSchemaInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaInvalid,
		Message:   "Form schema document failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEventNotFoundError creates a non-retryable lookup error.
func NewEventNotFoundError(eventID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventNotFound,
		Message:   "Event not found",
		Details:   fmt.Sprintf("eventId: %s", eventID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEventAccessDeniedError creates a non-retryable ownership error.
func NewEventAccessDeniedError(eventID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventAccessDenied,
		Message:   "Event belongs to another organizer",
		Details:   fmt.Sprintf("eventId: %s", eventID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRegistrationClosedError creates a non-retryable deadline error.
func NewRegistrationClosedError(eventID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistrationClosed,
		Message:   "Registration for this event has closed",
		Details:   fmt.Sprintf("eventId: %s", eventID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseQueryFailedError creates a retryable query error.
func NewDatabaseQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseQueryFailed,
		Message:   "Database query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable insert error. Local state
// is preserved so the caller can retry the save without re-entering data.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageUploadFailedError creates a retryable object storage error.
func NewStorageUploadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageUploadFailed,
		Message:   "File upload to object storage failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Submission search query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAssistantUnavailableError creates a retryable assistant error. Callers
// degrade to a canned reply instead of surfacing this to applicants.
func NewAssistantUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssistantUnavailable,
		Message:   "AI assistant backend unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Helpers
// ==========================

// CodeOf extracts the standardized code from an error, or empty.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return ""
}

// IsRetryable reports whether the error is worth retrying at the caller's
// discretion. The service itself never retries automatically.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}
