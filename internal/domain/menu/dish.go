package menu

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Dish is a menu item. Partner dishes carry the partner's tenant id; house
// dishes have none.
type Dish struct {
	shared.BaseEntity
	TenantID    *string
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Available   bool
}

// NewDish creates an available dish
func NewDish(tenantID *string, name, description, category string, price decimal.Decimal) (*Dish, error) {
	d := &Dish{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Available:  true,
	}
	if err := d.Update(name, description, category, price); err != nil {
		return nil, err
	}
	return d, nil
}

// Update replaces the editable fields
func (d *Dish) Update(name, description, category string, price decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Dish name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Dish name cannot exceed 200 characters")
	}
	if price.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Price cannot be negative")
	}
	d.Name = name
	d.Description = strings.TrimSpace(description)
	d.Category = strings.TrimSpace(category)
	d.Price = price
	return nil
}

// SetAvailable toggles whether guests can order the dish
func (d *Dish) SetAvailable(available bool) {
	d.Available = available
}

// DishFilter narrows dish listings
type DishFilter struct {
	Category      string
	AvailableOnly bool
	Page          shared.Page
}

// DishRepository persists dishes. Reads and writes take the tenancy scope.
type DishRepository interface {
	FindByID(ctx context.Context, id uuid.UUID, scope access.Scope) (*Dish, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Dish, error)
	List(ctx context.Context, scope access.Scope, filter DishFilter) ([]*Dish, int64, error)
	Save(ctx context.Context, d *Dish) error
	Delete(ctx context.Context, id uuid.UUID, scope access.Scope) error
}
