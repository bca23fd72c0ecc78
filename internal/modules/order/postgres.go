package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/soko-labs/storefront-backend/internal/apperr"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL order repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const orderColumns = `id, store_id, customer_id, order_number, status, subtotal, total, created_at, updated_at`

// CreateOrder inserts the order and all its lines inside a single transaction.
func (r *postgresRepo) CreateOrder(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Dependency("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, store_id, customer_id, order_number, status, subtotal, total)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		o.ID, o.StoreID, o.CustomerID, o.Number, o.Status, o.Subtotal, o.Total)
	if err != nil {
		return apperr.Dependency("failed to insert order", err)
	}

	for _, line := range o.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (id, order_id, product_id, quantity, unit_price, line_total)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			line.ID, o.ID, line.ProductID, line.Quantity, line.UnitPrice, line.LineTotal)
		if err != nil {
			return apperr.Dependency("failed to insert order line", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Dependency("failed to commit order", err)
	}
	return nil
}

func (r *postgresRepo) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := r.scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	o.Lines, err = r.listLines(ctx, o.ID)
	return o, err
}

func (r *postgresRepo) GetOrderByNumber(ctx context.Context, number string) (*Order, error) {
	o, err := r.scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number))
	if err != nil {
		return nil, err
	}
	o.Lines, err = r.listLines(ctx, o.ID)
	return o, err
}

func (r *postgresRepo) ListOrdersByStore(ctx context.Context, storeID uuid.UUID, status Status) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE store_id = $1`
	args := []any{storeID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, args...)
}

func (r *postgresRepo) ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`,
		customerID)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return apperr.Dependency("failed to update order status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Dependency("failed to read affected rows", err)
	}
	if n == 0 {
		return apperr.NotFound("order not found")
	}
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *postgresRepo) scanOrder(row *sql.Row) (*Order, error) {
	o := &Order{}
	var storeID sql.NullString
	err := row.Scan(&o.ID, &storeID, &o.CustomerID, &o.Number, &o.Status,
		&o.Subtotal, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("order not found")
	}
	if err != nil {
		return nil, apperr.Dependency("failed to load order", err)
	}
	if storeID.Valid {
		id, err := uuid.Parse(storeID.String)
		if err != nil {
			return nil, apperr.Dependency("corrupt store id on order", err)
		}
		o.StoreID = &id
	}
	return o, nil
}

func (r *postgresRepo) queryOrders(ctx context.Context, query string, args ...any) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Dependency("failed to list orders", err)
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o := &Order{}
		var storeID sql.NullString
		if err := rows.Scan(&o.ID, &storeID, &o.CustomerID, &o.Number, &o.Status,
			&o.Subtotal, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, apperr.Dependency("failed to scan order", err)
		}
		if storeID.Valid {
			id, err := uuid.Parse(storeID.String)
			if err != nil {
				return nil, apperr.Dependency("corrupt store id on order", err)
			}
			o.StoreID = &id
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *postgresRepo) listLines(ctx context.Context, orderID uuid.UUID) ([]*Line, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, line_total
		FROM order_lines WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, apperr.Dependency("failed to list order lines", err)
	}
	defer rows.Close()

	var lines []*Line
	for rows.Next() {
		line := &Line{}
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID,
			&line.Quantity, &line.UnitPrice, &line.LineTotal); err != nil {
			return nil, apperr.Dependency("failed to scan order line", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
