package persistence

import (
	"context"
	"fmt"

	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOverrideRepository implements access.OverrideRepository using GORM
type GormOverrideRepository struct {
	db *gorm.DB
}

// NewGormOverrideRepository creates a new GormOverrideRepository
func NewGormOverrideRepository(db *gorm.DB) *GormOverrideRepository {
	return &GormOverrideRepository{db: db}
}

// FindByUser returns the user's overrides keyed by module. Rows for modules
// that no longer exist are skipped.
func (r *GormOverrideRepository) FindByUser(ctx context.Context, userID string) (access.Overrides, error) {
	var rows []models.PermissionOverrideModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load permission overrides: %w", err)
	}
	out := make(access.Overrides, len(rows))
	for i := range rows {
		module := access.Module(rows[i].Module)
		if !module.IsValid() {
			continue
		}
		out[module] = rows[i].ToDomain()
	}
	return out, nil
}

// Upsert replaces the override for one module
func (r *GormOverrideRepository) Upsert(ctx context.Context, userID string, module access.Module, override access.GrantOverride) error {
	m := models.PermissionOverrideModelFromDomain(userID, module, override)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "module"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "can_create", "can_read", "can_update", "can_delete", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("upsert permission override: %w", err)
	}
	return nil
}

// DeleteByUser removes every override for the user
func (r *GormOverrideRepository) DeleteByUser(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.PermissionOverrideModel{}).Error; err != nil {
		return fmt.Errorf("delete permission overrides: %w", err)
	}
	return nil
}
