package dto

import (
	"net/http"
	"testing"

	"github.com/hostly/ordercore/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestDomainErrorMapping(t *testing.T) {
	tests := []struct {
		domainCode string
		clientCode string
		status     int
	}{
		{shared.CodeTenancyViolation, ErrCodeTenancyViolation, http.StatusForbidden},
		{shared.CodePermissionDenied, ErrCodePermissionDenied, http.StatusForbidden},
		{shared.CodeInvalidTransition, ErrCodeInvalidTransition, http.StatusUnprocessableEntity},
		{shared.CodeConcurrentModification, ErrCodeConcurrentModification, http.StatusConflict},
		{shared.CodeNotFound, ErrCodeNotFound, http.StatusNotFound},
		{shared.CodeInvalidInput, ErrCodeInvalidInput, http.StatusBadRequest},
		{shared.CodeUnauthorized, ErrCodeUnauthorized, http.StatusUnauthorized},
		{"SOMETHING_ELSE", ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.domainCode, func(t *testing.T) {
			code := FromDomainCode(tt.domainCode)
			assert.Equal(t, tt.clientCode, code)
			assert.Equal(t, tt.status, GetHTTPStatus(code))
		})
	}
}

func TestNewPaginatedResponse(t *testing.T) {
	page := shared.NewPaginated([]int{1, 2}, 7, shared.Page{Limit: 2, Offset: 4})

	resp := NewPaginatedResponse(&page, func(i int) string { return string(rune('a' + i)) })

	assert.True(t, resp.Success)
	assert.Equal(t, []string{"b", "c"}, resp.Data)
	assert.Equal(t, &Meta{Total: 7, Limit: 2, Offset: 4}, resp.Meta)
}
