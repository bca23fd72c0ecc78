package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/soko-labs/storefront-backend/internal/apperr"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL store repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

// ownerMergeSQL appends a store id to the owner record, creating the record
// when missing. The active store is only set when previously unset, and an
// id already present is not appended again — the statement is idempotent.
const ownerMergeSQL = `
	INSERT INTO store_owners (user_id, store_ids, active_store_id, max_stores)
	VALUES ($1, ARRAY[$2::uuid], $2::uuid, $3)
	ON CONFLICT (user_id) DO UPDATE SET
		store_ids = CASE WHEN $2::uuid = ANY (store_owners.store_ids)
			THEN store_owners.store_ids
			ELSE array_append(store_owners.store_ids, $2::uuid) END,
		active_store_id = COALESCE(store_owners.active_store_id, $2::uuid),
		updated_at = now()`

func (r *postgresRepository) CreateStoreWithOwner(ctx context.Context, s *Store) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Dependency("failed to begin transaction", err)
	}
	defer tx.Rollback()

	// Lock the owner row so two concurrent creations can't both pass the
	// cap check.
	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT cardinality(store_ids) FROM store_owners WHERE user_id = $1 FOR UPDATE`,
		s.OwnerID).Scan(&count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return apperr.Dependency("failed to read owner record", err)
	}
	if count >= MaxStoresPerOwner {
		return apperr.LimitExceeded(fmt.Sprintf("you already own the maximum of %d stores", MaxStoresPerOwner))
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO stores (id, owner_id, shop_name, bio, logo_url, approval, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.OwnerID, s.ShopName, s.Bio, s.LogoURL, s.Approval, s.IsActive)
	if err != nil {
		return apperr.Dependency("failed to insert store", err)
	}

	if _, err = tx.ExecContext(ctx, ownerMergeSQL, s.OwnerID, s.ID, MaxStoresPerOwner); err != nil {
		return apperr.Dependency("failed to update owner record", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Dependency("failed to commit store creation", err)
	}
	return nil
}

func (r *postgresRepository) GetStore(ctx context.Context, storeID uuid.UUID) (*Store, error) {
	s := &Store{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, shop_name, bio, logo_url, approval, is_active, created_at, updated_at
		FROM stores WHERE id = $1`, storeID).Scan(
		&s.ID, &s.OwnerID, &s.ShopName, &s.Bio, &s.LogoURL, &s.Approval, &s.IsActive,
		&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("store not found")
	}
	if err != nil {
		return nil, apperr.Dependency("failed to load store", err)
	}
	return s, nil
}

func (r *postgresRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Store, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, shop_name, bio, logo_url, approval, is_active, created_at, updated_at
		FROM stores WHERE owner_id = $1 ORDER BY created_at ASC`, ownerID)
	if err != nil {
		return nil, apperr.Dependency("failed to list stores", err)
	}
	defer rows.Close()

	var stores []*Store
	for rows.Next() {
		s := &Store{}
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.ShopName, &s.Bio, &s.LogoURL,
			&s.Approval, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, apperr.Dependency("failed to scan store", err)
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

func (r *postgresRepository) GetOwner(ctx context.Context, ownerID uuid.UUID) (*Owner, error) {
	var (
		o      = &Owner{}
		ids    pq.StringArray
		active sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, store_ids, active_store_id, max_stores
		FROM store_owners WHERE user_id = $1`, ownerID).Scan(
		&o.UserID, &ids, &active, &o.MaxStores)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("owner record not found")
	}
	if err != nil {
		return nil, apperr.Dependency("failed to load owner record", err)
	}

	o.StoreIDs = make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperr.Dependency("corrupt store id in owner record", err)
		}
		o.StoreIDs = append(o.StoreIDs, id)
	}
	if active.Valid {
		id, err := uuid.Parse(active.String)
		if err != nil {
			return nil, apperr.Dependency("corrupt active store id in owner record", err)
		}
		o.ActiveStoreID = &id
	}
	return o, nil
}

func (r *postgresRepository) UpdateStoreProfile(ctx context.Context, s *Store) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE stores SET shop_name = $1, bio = $2, logo_url = $3, updated_at = now()
		WHERE id = $4 AND owner_id = $5`,
		s.ShopName, s.Bio, s.LogoURL, s.ID, s.OwnerID)
	if err != nil {
		return apperr.Dependency("failed to update store", err)
	}
	return requireRow(res, "store not found")
}

func (r *postgresRepository) SetActiveStore(ctx context.Context, ownerID uuid.UUID, storeID *uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE store_owners SET active_store_id = $1, updated_at = now()
		WHERE user_id = $2`, storeID, ownerID)
	if err != nil {
		return apperr.Dependency("failed to set active store", err)
	}
	return requireRow(res, "owner record not found")
}

func (r *postgresRepository) SetApproval(ctx context.Context, storeID uuid.UUID, approval Approval) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE stores SET approval = $1, updated_at = now() WHERE id = $2`,
		approval, storeID)
	if err != nil {
		return apperr.Dependency("failed to update approval", err)
	}
	return requireRow(res, "store not found")
}

func (r *postgresRepository) DeleteStoreCascade(ctx context.Context, ownerID, storeID uuid.UUID, remaining []uuid.UUID, newActive *uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Dependency("failed to begin transaction", err)
	}
	defer tx.Rollback()

	ids := make(pq.StringArray, len(remaining))
	for i, id := range remaining {
		ids[i] = id.String()
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE store_owners SET store_ids = $1::uuid[], active_store_id = $2, updated_at = now()
		WHERE user_id = $3`, ids, newActive, ownerID)
	if err != nil {
		return apperr.Dependency("failed to rewrite owner record", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM products WHERE store_id = $1`, storeID); err != nil {
		return apperr.Dependency("failed to delete store products", err)
	}

	// Orders are history: keep the rows, drop the dangling reference.
	if _, err = tx.ExecContext(ctx, `UPDATE orders SET store_id = NULL WHERE store_id = $1`, storeID); err != nil {
		return apperr.Dependency("failed to detach store orders", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM stores WHERE id = $1 AND owner_id = $2`, storeID, ownerID)
	if err != nil {
		return apperr.Dependency("failed to delete store", err)
	}
	if err := requireRow(res, "store not found"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperr.Dependency("failed to commit store deletion", err)
	}
	return nil
}

func (r *postgresRepository) ListLegacy(ctx context.Context) ([]*LegacyStore, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, legacy_uid FROM stores WHERE legacy_uid IS NOT NULL ORDER BY created_at ASC`)
	if err != nil {
		return nil, apperr.Dependency("failed to list legacy stores", err)
	}
	defer rows.Close()

	var out []*LegacyStore
	for rows.Next() {
		ls := &LegacyStore{}
		if err := rows.Scan(&ls.ID, &ls.LegacyUID); err != nil {
			return nil, apperr.Dependency("failed to scan legacy store", err)
		}
		out = append(out, ls)
	}
	return out, rows.Err()
}

func (r *postgresRepository) MigrateLegacyStore(ctx context.Context, storeID, ownerID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Dependency("failed to begin transaction", err)
	}
	defer tx.Rollback()

	// The legacy_uid guard makes the rewrite a no-op when a concurrent run
	// already migrated this row.
	res, err := tx.ExecContext(ctx, `
		UPDATE stores SET owner_id = $1, legacy_uid = NULL, is_active = TRUE, updated_at = now()
		WHERE id = $2 AND legacy_uid IS NOT NULL`, ownerID, storeID)
	if err != nil {
		return apperr.Dependency("failed to rewrite legacy store", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	if _, err = tx.ExecContext(ctx, ownerMergeSQL, ownerID, storeID, MaxStoresPerOwner); err != nil {
		return apperr.Dependency("failed to merge owner record", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Dependency("failed to commit migration", err)
	}
	return nil
}

func (r *postgresRepository) EnsureOwner(ctx context.Context, userID, storeID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, ownerMergeSQL, userID, storeID, MaxStoresPerOwner); err != nil {
		return apperr.Dependency("failed to ensure owner record", err)
	}
	return nil
}

func requireRow(res sql.Result, notFoundMsg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Dependency("failed to read affected rows", err)
	}
	if n == 0 {
		return apperr.NotFound(notFoundMsg)
	}
	return nil
}
