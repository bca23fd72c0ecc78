package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/soko-labs/storefront-backend/internal/apperr"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL product repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const productColumns = `id, store_id, name, description, category, display_category,
	price, in_stock, stock_quantity, tags, images, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, p *Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return apperr.Dependency("failed to encode images", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO products
		  (id, store_id, name, description, category, display_category,
		   price, in_stock, stock_quantity, tags, images)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.StoreID, p.Name, p.Description, p.Category, p.DisplayCategory,
		p.Price, p.InStock, p.StockQuantity, pq.Array(p.Tags), images)
	if err != nil {
		return apperr.Dependency("failed to insert product", err)
	}
	return nil
}

func scanProduct(scan func(...any) error) (*Product, error) {
	p := &Product{}
	var (
		storeID sql.NullString
		tags    pq.StringArray
		images  []byte
	)
	err := scan(&p.ID, &storeID, &p.Name, &p.Description, &p.Category, &p.DisplayCategory,
		&p.Price, &p.InStock, &p.StockQuantity, &tags, &images,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if storeID.Valid {
		id, err := uuid.Parse(storeID.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt store id on product %s: %w", p.ID, err)
		}
		p.StoreID = &id
	}
	p.Tags = tags
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return nil, fmt.Errorf("corrupt image set on product %s: %w", p.ID, err)
		}
	}
	return p, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, apperr.Dependency("failed to load product", err)
	}
	return p, nil
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	n := 1
	if f.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, n)
		args = append(args, f.Category)
		n++
	}
	if f.StoreID != nil {
		query += fmt.Sprintf(` AND store_id = $%d`, n)
		args = append(args, *f.StoreID)
		n++
	}
	if f.InStockOnly {
		query += ` AND in_stock = TRUE`
	}
	if f.Search != "" {
		query += fmt.Sprintf(` AND name ILIKE $%d`, n)
		args = append(args, "%"+f.Search+"%")
		n++
	}
	query += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, n)
		args = append(args, f.Limit)
		n++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, n)
		args = append(args, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Dependency("failed to list products", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, apperr.Dependency("failed to scan product", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, p *Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return apperr.Dependency("failed to encode images", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET store_id=$1, name=$2, description=$3, category=$4, display_category=$5,
		    price=$6, in_stock=$7, stock_quantity=$8, tags=$9, images=$10, updated_at=now()
		WHERE id=$11`,
		p.StoreID, p.Name, p.Description, p.Category, p.DisplayCategory,
		p.Price, p.InStock, p.StockQuantity, pq.Array(p.Tags), images, p.ID)
	if err != nil {
		return apperr.Dependency("failed to update product", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Dependency("failed to read affected rows", err)
	}
	if n == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return apperr.Dependency("failed to delete product", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Dependency("failed to read affected rows", err)
	}
	if n == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}
