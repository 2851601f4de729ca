package dto

import (
	"time"

	"github.com/hostly/ordercore/internal/domain/order"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest is a guest order placed from a room or table
type CreateOrderRequest struct {
	LocationID    string             `json:"location_id" binding:"required,max=100"`
	PaymentMethod string             `json:"payment_method" binding:"required,payment_method"`
	PaymentProof  string             `json:"payment_proof" binding:"omitempty,max=255"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,max=50,dive"`
}

// OrderItemRequest is one requested dish
type OrderItemRequest struct {
	DishID   string `json:"dish_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,min=1,max=99"`
}

// TransitionRequest asks for a status change
type TransitionRequest struct {
	Status          string `json:"status" binding:"required,order_status"`
	ExpectedVersion *int   `json:"expected_version" binding:"omitempty,min=1"`
}

// OrderListQuery filters the order listing
type OrderListQuery struct {
	PageQuery
	Status     string `form:"status" binding:"omitempty,order_status"`
	LocationID string `form:"location_id"`
}

// OrderItemResponse is one order line
type OrderItemResponse struct {
	DishID    string          `json:"dish_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
	TenantID  *string         `json:"tenant_id,omitempty"`
}

// OrderResponse is the client view of an order
type OrderResponse struct {
	ID            string              `json:"id"`
	LocationID    string              `json:"location_id"`
	Items         []OrderItemResponse `json:"items"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	Status        string              `json:"status"`
	NextStatuses  []string            `json:"next_statuses"`
	PaymentMethod string              `json:"payment_method"`
	PaymentProof  string              `json:"payment_proof,omitempty"`
	TenantID      *string             `json:"tenant_id,omitempty"`
	Printed       bool                `json:"printed"`
	Version       int                 `json:"version"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ToOrderResponse converts a domain order
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			DishID:    it.DishID.String(),
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Amount:    it.Amount(),
			TenantID:  it.TenantID,
		})
	}
	next := make([]string, 0, 4)
	for _, s := range o.Status.NextStatuses() {
		next = append(next, string(s))
	}
	return OrderResponse{
		ID:            o.ID.String(),
		LocationID:    o.LocationID,
		Items:         items,
		TotalAmount:   o.TotalAmount,
		Status:        string(o.Status),
		NextStatuses:  next,
		PaymentMethod: string(o.PaymentMethod),
		PaymentProof:  o.PaymentProof,
		TenantID:      o.TenantID,
		Printed:       o.Printed,
		Version:       o.Version,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
