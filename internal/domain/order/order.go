package order

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hostly/ordercore/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Item is one line of an order. Slice order is the kitchen preparation order.
type Item struct {
	DishID    uuid.UUID
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	TenantID  *string
}

// Amount returns Quantity * UnitPrice
func (i Item) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewItem validates and builds an order item
func NewItem(dishID uuid.UUID, name string, quantity int, unitPrice decimal.Decimal, tenantID *string) (Item, error) {
	if dishID == uuid.Nil {
		return Item{}, shared.NewDomainError(shared.CodeInvalidInput, "Dish ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return Item{}, shared.NewDomainError(shared.CodeInvalidInput, "Dish name cannot be empty")
	}
	if quantity <= 0 {
		return Item{}, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return Item{}, shared.NewDomainError(shared.CodeInvalidInput, "Unit price cannot be negative")
	}
	return Item{
		DishID:    dishID,
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		TenantID:  normalizeTenant(tenantID),
	}, nil
}

// Order is one guest transaction tied to a physical location
type Order struct {
	shared.BaseAggregateRoot
	LocationID    string
	Items         []Item
	TotalAmount   decimal.Decimal
	Status        Status
	PaymentMethod PaymentMethod
	PaymentProof  string
	TenantID      *string // nil for house orders
	Printed       bool
}

// NewOrder creates an order in its initial status. Totals and tenant ownership
// are derived from items, never supplied by the caller.
func NewOrder(locationID string, payment PaymentMethod, paymentProof string, items []Item) (*Order, error) {
	if strings.TrimSpace(locationID) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Location cannot be empty")
	}
	if !payment.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "unknown payment method %q", payment)
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order must contain at least one item")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LocationID:        strings.TrimSpace(locationID),
		Items:             append([]Item(nil), items...),
		Status:            payment.InitialStatus(),
		PaymentMethod:     payment,
		PaymentProof:      strings.TrimSpace(paymentProof),
	}
	o.Recalculate()
	return o, nil
}

// Recalculate recomputes TotalAmount and TenantID from the items
func (o *Order) Recalculate() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount())
	}
	o.TotalAmount = total
	o.TenantID = owningTenant(o.Items)
}

// owningTenant returns the partner owning every item, or nil for mixed/house orders
func owningTenant(items []Item) *string {
	if len(items) == 0 || items[0].TenantID == nil {
		return nil
	}
	owner := *items[0].TenantID
	for _, item := range items[1:] {
		if item.TenantID == nil || *item.TenantID != owner {
			return nil
		}
	}
	return &owner
}

func normalizeTenant(tenantID *string) *string {
	if tenantID == nil || strings.TrimSpace(*tenantID) == "" {
		return nil
	}
	t := strings.TrimSpace(*tenantID)
	return &t
}

// TenantString returns the tenant id or "" for house orders
func (o *Order) TenantString() string {
	if o.TenantID == nil {
		return ""
	}
	return *o.TenantID
}

// CheckTransition validates a move to target. It returns changed=false with no
// error when target equals the current status.
func (o *Order) CheckTransition(target Status) (changed bool, err error) {
	if !target.IsValid() {
		return false, o.invalidTransition(target)
	}
	if target == o.Status {
		return false, nil
	}
	if !o.Status.CanTransitionTo(target) {
		return false, o.invalidTransition(target)
	}
	if target == StatusConfirmedUnpaid && o.PaymentMethod != PaymentCash {
		return false, o.invalidTransition(target).
			WithDetail("reason", "confirmed_unpaid requires cash payment")
	}
	return true, nil
}

func (o *Order) invalidTransition(target Status) *shared.DomainError {
	return shared.NewDomainErrorf(shared.CodeInvalidTransition,
		"cannot transition order from %s to %s", o.Status, target).
		WithDetail("current", string(o.Status)).
		WithDetail("requested", string(target))
}

// IsTerminal reports whether the order reached a terminal status
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// ItemSummary renders "name x qty, name x qty" in preparation order
func (o *Order) ItemSummary() string {
	parts := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		parts = append(parts, fmt.Sprintf("%s x %d", item.Name, item.Quantity))
	}
	return strings.Join(parts, ", ")
}

// ItemCount returns the number of lines
func (o *Order) ItemCount() int {
	return len(o.Items)
}
