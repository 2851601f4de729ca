package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/domain/shared"
)

// ListFilter narrows order listings
type ListFilter struct {
	Status     *Status
	LocationID string
	Page       shared.Page
}

// ChangeType is the kind of row-level change reported by the store
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
)

// RowChange is one raw row-level change from the store's feed
type RowChange struct {
	Type  ChangeType `json:"eventType"`
	Table string     `json:"table"`
	Row   *Order     `json:"row"`
}

// Store is the durable order collaborator. Every read takes the scope derived
// by the tenancy guard; a record outside the scope is reported as not found.
type Store interface {
	// GetByID returns NOT_FOUND when the order does not exist or is outside scope
	GetByID(ctx context.Context, id uuid.UUID, scope access.Scope) (*Order, error)

	// List returns orders visible in scope, newest first
	List(ctx context.Context, scope access.Scope, filter ListFilter) ([]*Order, int64, error)

	// Create persists a new order with its items
	Create(ctx context.Context, o *Order) error

	// UpdateStatus writes newStatus only if the stored version equals
	// expectedVersion, returning the updated order with version+1.
	// A mismatch returns CONCURRENT_MODIFICATION.
	UpdateStatus(ctx context.Context, id uuid.UUID, newStatus Status, expectedVersion int) (*Order, error)

	// MarkPrinted sets the print flag without touching status or version
	MarkPrinted(ctx context.Context, id uuid.UUID) error

	// SubscribeToChanges streams row-level changes for table until ctx ends
	SubscribeToChanges(ctx context.Context, table string) (<-chan RowChange, error)
}
