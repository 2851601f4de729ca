package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/domain/menu"
	"github.com/hostly/ordercore/internal/domain/shared"
	"github.com/hostly/ordercore/internal/infrastructure/persistence/models"
	"github.com/hostly/ordercore/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormDishRepository implements menu.DishRepository using GORM
type GormDishRepository struct {
	db *gorm.DB
}

// NewGormDishRepository creates a new GormDishRepository
func NewGormDishRepository(db *gorm.DB) *GormDishRepository {
	return &GormDishRepository{db: db}
}

// FindByID finds a dish inside scope
func (r *GormDishRepository) FindByID(ctx context.Context, id uuid.UUID, scope access.Scope) (*menu.Dish, error) {
	var m models.DishModel
	if err := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("load dish %s: %w", id, err)
	}
	return m.ToDomain(), nil
}

// FindByIDs loads dishes by id across all tenants, used to price guest orders
func (r *GormDishRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*menu.Dish, error) {
	out := make(map[uuid.UUID]*menu.Dish, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.DishModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load dishes: %w", err)
	}
	for i := range rows {
		out[rows[i].ID] = rows[i].ToDomain()
	}
	return out, nil
}

// List returns dishes inside scope ordered by category and name
func (r *GormDishRepository) List(ctx context.Context, scope access.Scope, filter menu.DishFilter) ([]*menu.Dish, int64, error) {
	page := filter.Page.Normalize()
	query := r.db.WithContext(ctx).Model(&models.DishModel{}).Scopes(tenant.Apply(scope))
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.AvailableOnly {
		query = query.Where("available = ?", true)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count dishes: %w", err)
	}
	var rows []models.DishModel
	if err := query.Order("category ASC, name ASC").Limit(page.Limit).Offset(page.Offset).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list dishes: %w", err)
	}
	dishes := make([]*menu.Dish, len(rows))
	for i := range rows {
		dishes[i] = rows[i].ToDomain()
	}
	return dishes, total, nil
}

// Save inserts or updates a dish
func (r *GormDishRepository) Save(ctx context.Context, d *menu.Dish) error {
	if err := r.db.WithContext(ctx).Save(models.DishModelFromDomain(d)).Error; err != nil {
		return fmt.Errorf("save dish: %w", err)
	}
	return nil
}

// Delete removes a dish inside scope
func (r *GormDishRepository) Delete(ctx context.Context, id uuid.UUID, scope access.Scope) error {
	result := r.db.WithContext(ctx).Scopes(tenant.Apply(scope)).Where("id = ?", id).Delete(&models.DishModel{})
	if result.Error != nil {
		return fmt.Errorf("delete dish: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
