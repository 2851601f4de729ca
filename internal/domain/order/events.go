package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType distinguishes creation from status changes
type EventType string

const (
	EventNewOrder      EventType = "NEW_ORDER"
	EventStatusChanged EventType = "STATUS_CHANGED"
)

// Snapshot carries the order fields sinks render without re-reading the store
type Snapshot struct {
	LocationID    string          `json:"locationId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	ItemSummary   string          `json:"itemSummary"`
}

// ChangeEvent is produced once per committed transition and lives only for the
// duration of fan-out.
type ChangeEvent struct {
	ID             uuid.UUID `json:"id"`
	OrderID        uuid.UUID `json:"orderId"`
	PreviousStatus *Status   `json:"previousStatus,omitempty"`
	NewStatus      Status    `json:"newStatus"`
	TenantID       *string   `json:"tenantId,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
	ActorRole      string    `json:"actorRole,omitempty"`
	Version        int       `json:"version"`
	Snapshot       Snapshot  `json:"snapshot"`

	// OriginSession is the client session that requested the change, if any
	OriginSession string `json:"originSession,omitempty"`
	// Instance is the server instance that committed the change
	Instance string `json:"instance,omitempty"`
	// Relayed marks events received from another instance
	Relayed bool `json:"-"`
}

// Type returns NEW_ORDER for creation events and STATUS_CHANGED otherwise
func (e ChangeEvent) Type() EventType {
	if e.IsCreation() {
		return EventNewOrder
	}
	return EventStatusChanged
}

// IsCreation reports whether the event announces a new order
func (e ChangeEvent) IsCreation() bool {
	return e.PreviousStatus == nil
}

// TenantString returns the tenant id or "" for house orders
func (e ChangeEvent) TenantString() string {
	if e.TenantID == nil {
		return ""
	}
	return *e.TenantID
}

func snapshotOf(o *Order) Snapshot {
	return Snapshot{
		LocationID:    o.LocationID,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: o.PaymentMethod,
		ItemSummary:   o.ItemSummary(),
	}
}

func copyTenant(t *string) *string {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// NewCreatedEvent builds the creation event for a freshly stored order
func NewCreatedEvent(o *Order, originSession string) ChangeEvent {
	return ChangeEvent{
		ID:            uuid.New(),
		OrderID:       o.ID,
		NewStatus:     o.Status,
		TenantID:      copyTenant(o.TenantID),
		OccurredAt:    o.CreatedAt,
		Version:       o.Version,
		Snapshot:      snapshotOf(o),
		OriginSession: originSession,
	}
}

// NewTransitionEvent builds the event for a committed status change
func NewTransitionEvent(o *Order, previous Status, actorRole, originSession string) ChangeEvent {
	prev := previous
	return ChangeEvent{
		ID:             uuid.New(),
		OrderID:        o.ID,
		PreviousStatus: &prev,
		NewStatus:      o.Status,
		TenantID:       copyTenant(o.TenantID),
		OccurredAt:     o.UpdatedAt,
		ActorRole:      actorRole,
		Version:        o.Version,
		Snapshot:       snapshotOf(o),
		OriginSession:  originSession,
	}
}
