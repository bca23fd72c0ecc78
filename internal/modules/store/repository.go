package store

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for store and owner persistence. The
// multi-step operations (create, cascade delete, migrate) are each a single
// transaction so partial failure never splits a store from its owner record.
type Repository interface {
	// CreateStoreWithOwner inserts the store and merge-upserts the owner
	// record (append id, set active when previously unset) in one
	// transaction. Returns a LimitExceeded error when the owner is already
	// at capacity at commit time.
	CreateStoreWithOwner(ctx context.Context, s *Store) error

	GetStore(ctx context.Context, storeID uuid.UUID) (*Store, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Store, error)
	GetOwner(ctx context.Context, ownerID uuid.UUID) (*Owner, error)

	UpdateStoreProfile(ctx context.Context, s *Store) error
	SetActiveStore(ctx context.Context, ownerID uuid.UUID, storeID *uuid.UUID) error
	SetApproval(ctx context.Context, storeID uuid.UUID, approval Approval) error

	// DeleteStoreCascade atomically rewrites the owner record to the given
	// remaining list and active id, deletes the store's products, clears
	// the store reference on its orders, and deletes the store row last.
	DeleteStoreCascade(ctx context.Context, ownerID, storeID uuid.UUID, remaining []uuid.UUID, newActive *uuid.UUID) error

	// ListLegacy returns stores still carrying the legacy uid column.
	ListLegacy(ctx context.Context) ([]*LegacyStore, error)

	// MigrateLegacyStore rewrites one legacy row in place (owner id
	// populated, legacy uid cleared, is_active true) and merge-upserts the
	// owner record, in one transaction. A row already rewritten by a
	// concurrent run is left untouched.
	MigrateLegacyStore(ctx context.Context, storeID, ownerID uuid.UUID) error

	// EnsureOwner merge-creates an owner record listing storeID, healing
	// stores whose owner record went missing in a partial prior failure.
	EnsureOwner(ctx context.Context, userID, storeID uuid.UUID) error
}
