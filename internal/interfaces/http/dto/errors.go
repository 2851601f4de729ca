package dto

import (
	"net/http"

	"github.com/hostly/ordercore/internal/domain/shared"
)

// Client-facing error codes. Format: ERR_<DESCRIPTION>
const (
	ErrCodeInternal               = "ERR_INTERNAL"
	ErrCodeValidation             = "ERR_VALIDATION"
	ErrCodeBadRequest             = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput           = "ERR_INVALID_INPUT"
	ErrCodeUnauthorized           = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired           = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenRevoked           = "ERR_TOKEN_REVOKED"
	ErrCodeTenancyViolation       = "ERR_TENANCY_VIOLATION"
	ErrCodePermissionDenied       = "ERR_PERMISSION_DENIED"
	ErrCodeNotFound               = "ERR_NOT_FOUND"
	ErrCodeInvalidTransition      = "ERR_INVALID_TRANSITION"
	ErrCodeConcurrentModification = "ERR_CONCURRENT_MODIFICATION"
	ErrCodeSinkDelivery           = "ERR_SINK_DELIVERY"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:               http.StatusInternalServerError,
	ErrCodeValidation:             http.StatusBadRequest,
	ErrCodeBadRequest:             http.StatusBadRequest,
	ErrCodeInvalidInput:           http.StatusBadRequest,
	ErrCodeUnauthorized:           http.StatusUnauthorized,
	ErrCodeTokenExpired:           http.StatusUnauthorized,
	ErrCodeTokenRevoked:           http.StatusUnauthorized,
	ErrCodeTenancyViolation:       http.StatusForbidden,
	ErrCodePermissionDenied:       http.StatusForbidden,
	ErrCodeNotFound:               http.StatusNotFound,
	ErrCodeInvalidTransition:      http.StatusUnprocessableEntity,
	ErrCodeConcurrentModification: http.StatusConflict,
	ErrCodeSinkDelivery:           http.StatusInternalServerError,
}

// domainErrorCodes maps domain error codes to client codes
var domainErrorCodes = map[string]string{
	shared.CodeTenancyViolation:       ErrCodeTenancyViolation,
	shared.CodePermissionDenied:       ErrCodePermissionDenied,
	shared.CodeInvalidTransition:      ErrCodeInvalidTransition,
	shared.CodeConcurrentModification: ErrCodeConcurrentModification,
	shared.CodeSinkDeliveryFailure:    ErrCodeSinkDelivery,
	shared.CodeNotFound:               ErrCodeNotFound,
	shared.CodeInvalidInput:           ErrCodeInvalidInput,
	shared.CodeUnauthorized:           ErrCodeUnauthorized,
}

// GetHTTPStatus returns the HTTP status code for an error code, or 500
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromDomainCode converts a domain error code to its client code. Unknown
// codes become ERR_INTERNAL.
func FromDomainCode(code string) string {
	if c, ok := domainErrorCodes[code]; ok {
		return c
	}
	return ErrCodeInternal
}
