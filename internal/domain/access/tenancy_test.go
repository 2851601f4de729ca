package access

import (
	"testing"

	"github.com/hostly/ordercore/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestGuard_Narrow(t *testing.T) {
	g := NewGuard()

	t.Run("non-partner roles are unrestricted", func(t *testing.T) {
		for _, r := range []Role{RoleAdmin, RoleStaff, RoleMaintainer} {
			scope, err := g.Narrow(Principal{Role: r}, OperationWrite)
			require.NoError(t, err)
			assert.False(t, scope.Restricted)
			assert.Nil(t, scope.TenantPtr())
		}
	})

	t.Run("partner is narrowed to its tenant", func(t *testing.T) {
		scope, err := g.Narrow(Principal{Role: RolePartner, TenantID: "p1"}, OperationRead)
		require.NoError(t, err)
		assert.True(t, scope.Restricted)
		assert.Equal(t, "p1", scope.TenantID)
		assert.Equal(t, "p1", *scope.TenantPtr())
	})

	t.Run("partner without tenant is refused", func(t *testing.T) {
		for _, tenant := range []string{"", "   "} {
			_, err := g.Narrow(Principal{Role: RolePartner, TenantID: tenant}, OperationRead)
			require.Error(t, err)
			assert.True(t, shared.HasCode(err, shared.CodeTenancyViolation))
		}
	})
}

func TestGuard_Authorize(t *testing.T) {
	g := NewGuard()
	partner := Principal{Role: RolePartner, TenantID: "p1"}

	assert.NoError(t, g.Authorize(partner, OperationWrite, strPtr("p1")))

	err := g.Authorize(partner, OperationWrite, strPtr("p2"))
	assert.True(t, shared.HasCode(err, shared.CodeTenancyViolation))

	err = g.Authorize(partner, OperationRead, nil)
	assert.True(t, shared.HasCode(err, shared.CodeTenancyViolation), "house orders are outside a partner scope")

	assert.NoError(t, g.Authorize(Principal{Role: RoleStaff}, OperationWrite, nil))
	assert.NoError(t, g.Authorize(Principal{Role: RoleStaff}, OperationWrite, strPtr("p2")))
}
