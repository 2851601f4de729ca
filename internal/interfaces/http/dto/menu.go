package dto

import (
	"time"

	"github.com/hostly/ordercore/internal/domain/menu"
	"github.com/shopspring/decimal"
)

// DishRequest creates or updates a dish. TenantID is honoured for house
// roles only; partners always write their own tenant.
type DishRequest struct {
	TenantID    *string         `json:"tenant_id" binding:"omitempty,max=100"`
	Name        string          `json:"name" binding:"required,max=200"`
	Description string          `json:"description" binding:"omitempty,max=2000"`
	Category    string          `json:"category" binding:"omitempty,max=100"`
	Price       decimal.Decimal `json:"price"`
	Available   *bool           `json:"available"`
}

// DishListQuery filters the dish listing
type DishListQuery struct {
	PageQuery
	Category      string `form:"category"`
	AvailableOnly bool   `form:"available_only"`
}

// DishResponse is the client view of a dish
type DishResponse struct {
	ID          string          `json:"id"`
	TenantID    *string         `json:"tenant_id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Available   bool            `json:"available"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToDishResponse converts a domain dish
func ToDishResponse(d *menu.Dish) DishResponse {
	return DishResponse{
		ID:          d.ID.String(),
		TenantID:    d.TenantID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Price:       d.Price,
		Available:   d.Available,
		UpdatedAt:   d.UpdatedAt,
	}
}
