package access

import "context"

// OverrideRepository stores per-user permission overrides
type OverrideRepository interface {
	// FindByUser returns the user's overrides, empty when none exist
	FindByUser(ctx context.Context, userID string) (Overrides, error)
	// Upsert replaces the override for one module
	Upsert(ctx context.Context, userID string, module Module, override GrantOverride) error
	// DeleteByUser removes every override for the user
	DeleteByUser(ctx context.Context, userID string) error
}
