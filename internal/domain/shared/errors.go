package shared

import (
	"errors"
	"fmt"
)

// Error codes shared by every domain package. The HTTP layer maps each code to
// a status and a client-facing code, so clients can tell the rules apart.
const (
	CodeTenancyViolation       = "TENANCY_VIOLATION"
	CodePermissionDenied       = "PERMISSION_DENIED"
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeSinkDeliveryFailure    = "SINK_DELIVERY_FAILURE"
	CodeNotFound               = "NOT_FOUND"
	CodeInvalidInput           = "INVALID_INPUT"
	CodeUnauthorized           = "UNAUTHORIZED"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError carrying the same code,
// so errors.Is(err, shared.ErrNotFound) works for any NOT_FOUND error.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetail returns a copy of the error with an extra diagnostic detail.
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Code: e.Code, Message: e.Message, Details: details}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// Common domain errors
var (
	ErrTenancyViolation       = NewDomainError(CodeTenancyViolation, "Principal lacks the tenant context required for this operation")
	ErrPermissionDenied       = NewDomainError(CodePermissionDenied, "Permission denied")
	ErrInvalidTransition      = NewDomainError(CodeInvalidTransition, "Status transition not allowed")
	ErrConcurrentModification = NewDomainError(CodeConcurrentModification, "Resource was modified by another actor, re-read and retry")
	ErrSinkDeliveryFailure    = NewDomainError(CodeSinkDeliveryFailure, "Notification delivery failed")
	ErrNotFound               = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput           = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrUnauthorized           = NewDomainError(CodeUnauthorized, "Authentication required")
)

// AsDomainError extracts a DomainError from err, if any.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries the given domain error code.
func HasCode(err error, code string) bool {
	de, ok := AsDomainError(err)
	return ok && de.Code == code
}
