// Package errors provides the standardized error taxonomy of the report pipeline.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Client errors
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidRequestBody ErrorCode = "INVALID_REQUEST_BODY"

	// Rendering collaborator
	ErrCodeRenderFailed  ErrorCode = "RENDER_FAILED"
	ErrCodeRenderTimeout ErrorCode = "RENDER_TIMEOUT"

	// Delivery collaborator
	ErrCodeSendFailed  ErrorCode = "SEND_FAILED"
	ErrCodeSendTimeout ErrorCode = "SEND_TIMEOUT"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the collaborator error the StandardError was built from.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e after merging the given key/value into Metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable client error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Missing required fields or invalid scores",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestBodyError is returned when the body cannot be decoded at all.
func NewInvalidRequestBodyError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequestBody,
		Message:   "Request body could not be parsed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewRenderFailedError wraps a hard failure of the rendering collaborator.
func NewRenderFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRenderFailed,
		Message:   "Report document could not be rendered",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewRenderTimeoutError is returned when rendering exceeds its budget.
func NewRenderTimeoutError(timeout time.Duration, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRenderTimeout,
		Message:   "Report rendering timed out",
		Details:   fmt.Sprintf("timeout: %s, error: %v", timeout, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSendFailedError wraps a rejection by the email collaborator.
func NewSendFailedError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSendFailed,
		Message:   "Report email could not be delivered",
		Details:   fmt.Sprintf("provider: %s, error: %v", provider, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSendTimeoutError is returned when the email collaborator does not answer in time.
func NewSendTimeoutError(provider string, timeout time.Duration, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSendTimeout,
		Message:   "Report email delivery timed out",
		Details:   fmt.Sprintf("provider: %s, timeout: %s, error: %v", provider, timeout, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInternalError wraps anything that does not belong to the taxonomy above.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// HTTPStatus maps an error code onto the response status class.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeInvalidRequestBody:
		return http.StatusBadRequest
	case ErrCodeRenderTimeout, ErrCodeSendTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether the code is caused by the caller's input.
func IsClientError(code ErrorCode) bool {
	return HTTPStatus(code) < http.StatusInternalServerError
}

// IsTimeout reports whether the code denotes an exceeded collaborator budget.
func IsTimeout(code ErrorCode) bool {
	return strings.HasSuffix(string(code), "_TIMEOUT")
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.HasPrefix(codeStr, "RENDER"):
		return "RENDER"
	case strings.HasPrefix(codeStr, "SEND"):
		return "DELIVERY"
	default:
		return "OTHER"
	}
}
