// Package tenant turns tenancy guard scopes into GORM query scopes.
//
// Usage:
//
//	scope, err := guard.Narrow(principal, access.OperationRead)
//	db.Scopes(tenant.Apply(scope)).Find(&orders) // WHERE tenant_id = 'p1' for partners
package tenant

import (
	"errors"

	"github.com/hostly/ordercore/internal/domain/access"
	"gorm.io/gorm"
)

// Column is the tenant column shared by every tenant-owned table
const Column = "tenant_id"

// ErrEmptyRestrictedScope is raised when a restricted scope has no tenant.
// The guard never produces one; this catches hand-built scopes.
var ErrEmptyRestrictedScope = errors.New("restricted tenant scope without tenant id")

// Apply returns a GORM scope adding tenant_id = ? for restricted scopes and
// leaving unrestricted queries untouched.
func Apply(scope access.Scope) func(db *gorm.DB) *gorm.DB {
	return ApplyColumn(scope, Column)
}

// ApplyColumn is Apply for tables or joins using a qualified tenant column
func ApplyColumn(scope access.Scope, column string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !scope.Restricted {
			return db
		}
		if scope.TenantID == "" {
			_ = db.AddError(ErrEmptyRestrictedScope)
			return db
		}
		return db.Where(column+" = ?", scope.TenantID)
	}
}
