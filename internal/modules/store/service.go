package store

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/soko-labs/storefront-backend/internal/apperr"
)

// Service defines the vendor ownership business logic.
type Service interface {
	// CreateStore registers a new storefront for ownerID. Fails with a
	// LimitExceeded error when the owner already holds the maximum number
	// of stores. New stores start unapproved and active.
	CreateStore(ctx context.Context, ownerID uuid.UUID, req CreateStoreRequest) (*Store, error)

	GetStore(ctx context.Context, storeID uuid.UUID) (*Store, error)
	ListOwnerStores(ctx context.Context, ownerID uuid.UUID) ([]*Store, error)
	GetOwner(ctx context.Context, ownerID uuid.UUID) (*Owner, error)

	UpdateStore(ctx context.Context, ownerID, storeID uuid.UUID, req UpdateStoreRequest) (*Store, error)

	// SwitchActiveStore makes storeID the owner's active store. The store
	// must be one of the owner's own stores.
	SwitchActiveStore(ctx context.Context, ownerID, storeID uuid.UUID) error

	// DeleteStore tears a store down: products deleted, orders detached,
	// owner record rewritten, all in one transaction. When the deleted
	// store was active, the first remaining store is promoted.
	DeleteStore(ctx context.Context, ownerID, storeID uuid.UUID) error

	// SetApproval applies an admin approve/reject decision. Idempotent;
	// re-review in either direction is allowed.
	SetApproval(ctx context.Context, storeID uuid.UUID, approval Approval) error

	// MigrateLegacyStores rewrites every store still in the legacy
	// one-store-per-user shape and merge-creates owner records for them.
	// Safe to re-run and to run alongside normal traffic.
	MigrateLegacyStores(ctx context.Context) (*MigrationReport, error)

	// EnsureOwnerExists heals a missing owner record for an existing store.
	EnsureOwnerExists(ctx context.Context, userID, storeID uuid.UUID) error
}

type service struct {
	repo     Repository
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewService creates a new vendor ownership service.
func NewService(repo Repository, logger zerolog.Logger) Service {
	return &service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With().Str("component", "store").Logger(),
	}
}

func (s *service) CreateStore(ctx context.Context, ownerID uuid.UUID, req CreateStoreRequest) (*Store, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.Validation("invalid store payload").WithDetails(err.Error())
	}

	owner, err := s.repo.GetOwner(ctx, ownerID)
	if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}
	if owner != nil && len(owner.StoreIDs) >= MaxStoresPerOwner {
		return nil, apperr.LimitExceeded("you already own the maximum of 3 stores")
	}

	st := &Store{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		ShopName: req.ShopName,
		Bio:      req.Bio,
		LogoURL:  req.LogoURL,
		Approval: ApprovalPending,
		IsActive: true,
	}
	if err := s.repo.CreateStoreWithOwner(ctx, st); err != nil {
		return nil, err
	}

	s.logger.Info().Stringer("store_id", st.ID).Stringer("owner_id", ownerID).Msg("store created")
	return st, nil
}

func (s *service) GetStore(ctx context.Context, storeID uuid.UUID) (*Store, error) {
	return s.repo.GetStore(ctx, storeID)
}

func (s *service) ListOwnerStores(ctx context.Context, ownerID uuid.UUID) ([]*Store, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *service) GetOwner(ctx context.Context, ownerID uuid.UUID) (*Owner, error) {
	return s.repo.GetOwner(ctx, ownerID)
}

func (s *service) UpdateStore(ctx context.Context, ownerID, storeID uuid.UUID, req UpdateStoreRequest) (*Store, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.Validation("invalid store payload").WithDetails(err.Error())
	}

	st, err := s.repo.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if st.OwnerID != ownerID {
		return nil, apperr.NotFound("store not found")
	}

	st.ShopName = req.ShopName
	st.Bio = req.Bio
	st.LogoURL = req.LogoURL
	if err := s.repo.UpdateStoreProfile(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) SwitchActiveStore(ctx context.Context, ownerID, storeID uuid.UUID) error {
	owner, err := s.repo.GetOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if !owner.Owns(storeID) {
		return apperr.Validation("store does not belong to this owner")
	}
	return s.repo.SetActiveStore(ctx, ownerID, &storeID)
}

func (s *service) DeleteStore(ctx context.Context, ownerID, storeID uuid.UUID) error {
	owner, err := s.repo.GetOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if !owner.Owns(storeID) {
		return apperr.NotFound("store not found")
	}

	remaining := make([]uuid.UUID, 0, len(owner.StoreIDs))
	for _, id := range owner.StoreIDs {
		if id != storeID {
			remaining = append(remaining, id)
		}
	}

	newActive := owner.ActiveStoreID
	if owner.ActiveStoreID != nil && *owner.ActiveStoreID == storeID {
		if len(remaining) > 0 {
			promoted := remaining[0]
			newActive = &promoted
		} else {
			newActive = nil
		}
	}

	if err := s.repo.DeleteStoreCascade(ctx, ownerID, storeID, remaining, newActive); err != nil {
		return err
	}
	s.logger.Info().Stringer("store_id", storeID).Stringer("owner_id", ownerID).Msg("store deleted")
	return nil
}

func (s *service) SetApproval(ctx context.Context, storeID uuid.UUID, approval Approval) error {
	if !approval.Valid() {
		return apperr.Validationf("unknown approval status %q", approval)
	}
	if err := s.repo.SetApproval(ctx, storeID, approval); err != nil {
		return err
	}
	s.logger.Info().Stringer("store_id", storeID).Str("approval", string(approval)).Msg("store approval updated")
	return nil
}

func (s *service) MigrateLegacyStores(ctx context.Context) (*MigrationReport, error) {
	legacy, err := s.repo.ListLegacy(ctx)
	if err != nil {
		return nil, err
	}

	report := &MigrationReport{Scanned: len(legacy)}
	for _, ls := range legacy {
		if err := s.repo.MigrateLegacyStore(ctx, ls.ID, ls.LegacyUID); err != nil {
			report.Failed++
			s.logger.Error().Err(err).Stringer("store_id", ls.ID).Msg("legacy store migration failed")
			continue
		}
		report.Migrated++
	}

	s.logger.Info().
		Int("scanned", report.Scanned).
		Int("migrated", report.Migrated).
		Int("failed", report.Failed).
		Msg("legacy store migration finished")
	return report, nil
}

func (s *service) EnsureOwnerExists(ctx context.Context, userID, storeID uuid.UUID) error {
	return s.repo.EnsureOwner(ctx, userID, storeID)
}
