package models

import (
	"time"

	"github.com/hostly/ordercore/internal/domain/access"
)

// PermissionOverrideModel stores one user's sparse override for one module.
// Null flag columns keep the role preset value.
type PermissionOverrideModel struct {
	UserID    string `gorm:"type:varchar(64);primaryKey"`
	Module    string `gorm:"type:varchar(32);primaryKey"`
	Enabled   *bool
	CanCreate *bool
	CanRead   *bool
	CanUpdate *bool
	CanDelete *bool
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PermissionOverrideModel) TableName() string {
	return "permission_overrides"
}

// ToDomain converts the row to a GrantOverride
func (m *PermissionOverrideModel) ToDomain() access.GrantOverride {
	return access.GrantOverride{
		Enabled: m.Enabled,
		Create:  m.CanCreate,
		Read:    m.CanRead,
		Update:  m.CanUpdate,
		Delete:  m.CanDelete,
	}
}

// PermissionOverrideModelFromDomain builds the row for userID and module
func PermissionOverrideModelFromDomain(userID string, module access.Module, o access.GrantOverride) *PermissionOverrideModel {
	return &PermissionOverrideModel{
		UserID:    userID,
		Module:    string(module),
		Enabled:   o.Enabled,
		CanCreate: o.Create,
		CanRead:   o.Read,
		CanUpdate: o.Update,
		CanDelete: o.Delete,
		UpdatedAt: time.Now().UTC(),
	}
}

// All returns every model for AutoMigrate in tests and tooling
func All() []any {
	return []any{&OrderModel{}, &OrderItemModel{}, &DishModel{}, &PermissionOverrideModel{}}
}
