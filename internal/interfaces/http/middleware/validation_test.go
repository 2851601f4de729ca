package middleware

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationSample struct {
	Status  string   `json:"status" validate:"omitempty,order_status"`
	Payment string   `json:"payment_method" validate:"required,payment_method"`
	Module  string   `form:"module" validate:"omitempty,module"`
	Role    string   `json:"role" validate:"omitempty,role"`
	Items   []string `json:"items" validate:"min=1"`
}

func newTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	require.NoError(t, RegisterValidations(v))
	return v
}

func TestRegisterValidations(t *testing.T) {
	v := newTestValidator(t)

	ok := validationSample{Status: "ready_for_delivery", Payment: "room_charge", Module: "orders", Role: "partner", Items: []string{"x"}}
	assert.NoError(t, v.Struct(ok))

	bad := validationSample{Status: "shipped", Payment: "bitcoin", Module: "kitchen", Role: "chef"}
	details := ValidationDetails(v.Struct(bad))
	require.Len(t, details, 5)

	byField := make(map[string]string, len(details))
	for _, d := range details {
		byField[d.Field] = d.Message
	}
	assert.Equal(t, "Unknown order status", byField["status"])
	assert.Equal(t, "Must be one of: cash card room_charge mobile", byField["payment_method"])
	assert.Equal(t, "Unknown module", byField["module"])
	assert.Equal(t, "Unknown role", byField["role"])
	assert.Equal(t, "Must contain at least 1 entries", byField["items"])
}

func TestValidationDetails_IgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, ValidationDetails(assert.AnError))
}
