package order

import (
	"github.com/google/uuid"
	"github.com/hostly/ordercore/internal/domain/order"
	"github.com/hostly/ordercore/internal/domain/shared"
)

// CreateOrderInput is a guest order. Prices and names come from the menu.
type CreateOrderInput struct {
	LocationID    string
	PaymentMethod order.PaymentMethod
	PaymentProof  string
	Items         []CreateItemInput
	OriginSession string
}

// CreateItemInput is one requested dish
type CreateItemInput struct {
	DishID   uuid.UUID
	Quantity int
}

// TransitionInput requests a status change. ExpectedVersion, when set, must
// match the stored version or the call fails as a concurrent modification.
type TransitionInput struct {
	OrderID         uuid.UUID
	Target          order.Status
	ExpectedVersion *int
	OriginSession   string
}

// ListInput filters an order listing
type ListInput struct {
	Status     *order.Status
	LocationID string
	Page       shared.Page
}
