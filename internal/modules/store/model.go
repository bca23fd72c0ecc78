// Package store implements the vendor ownership model: a user owns up to
// MaxStoresPerOwner storefronts tracked by a single owner record, with at
// most one store active at a time. Creation, switching, deletion and the
// legacy-shape migration all maintain the pair of invariants:
//
//   - the active store id is nil or one of the owner's store ids
//   - every store's owner record lists that store's id
package store

import (
	"time"

	"github.com/google/uuid"
)

// MaxStoresPerOwner caps how many storefronts a single user may own.
const MaxStoresPerOwner = 3

// Approval is the admin review status of a store.
type Approval string

const (
	ApprovalPending  Approval = "pending"
	ApprovalApproved Approval = "approved"
	ApprovalRejected Approval = "rejected"
)

// Valid reports whether a is one of the known review states.
func (a Approval) Valid() bool {
	switch a {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// Store is a single vendor-operated storefront.
type Store struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"ownerId"`
	ShopName  string    `json:"shopName"`
	Bio       string    `json:"bio,omitempty"`
	LogoURL   string    `json:"logoUrl,omitempty"`
	Approval  Approval  `json:"approval"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Owner is the per-user record tracking owned stores and the active one.
// It is created lazily on first store creation and never hard-deleted.
type Owner struct {
	UserID        uuid.UUID   `json:"uid"`
	StoreIDs      []uuid.UUID `json:"stores"`
	ActiveStoreID *uuid.UUID  `json:"activeStoreId"`
	MaxStores     int         `json:"maxStores"`
}

// Owns reports whether storeID is in the owner's store list.
func (o *Owner) Owns(storeID uuid.UUID) bool {
	for _, id := range o.StoreIDs {
		if id == storeID {
			return true
		}
	}
	return false
}

// LegacyStore is a store row still carrying the old per-user shape, where
// the owning user sat in a uid column and no owner record existed.
type LegacyStore struct {
	ID        uuid.UUID
	LegacyUID uuid.UUID
}

// CreateStoreRequest is the payload for registering a new storefront.
type CreateStoreRequest struct {
	ShopName string `json:"shopName" validate:"required,min=2,max=80"`
	Bio      string `json:"bio" validate:"max=500"`
	LogoURL  string `json:"logoUrl" validate:"omitempty,url"`
}

// UpdateStoreRequest is the payload for editing a store profile.
type UpdateStoreRequest struct {
	ShopName string `json:"shopName" validate:"required,min=2,max=80"`
	Bio      string `json:"bio" validate:"max=500"`
	LogoURL  string `json:"logoUrl" validate:"omitempty,url"`
}

// MigrationReport summarizes one legacy migration run.
type MigrationReport struct {
	Scanned  int `json:"scanned"`
	Migrated int `json:"migrated"`
	Failed   int `json:"failed"`
}
