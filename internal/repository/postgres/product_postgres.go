package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

// ProductPostgres is a PostgreSQL implementation of repository.ProductRepository.
// Image ids are stored as a JSONB array; they are opaque to this service.
type ProductPostgres struct {
	db *sql.DB
}

// NewProductPostgres creates a new ProductPostgres repository.
func NewProductPostgres(db *sql.DB) *ProductPostgres {
	return &ProductPostgres{db: db}
}

var _ repository.ProductRepository = (*ProductPostgres)(nil)

const productColumns = `id, name, description, price, quantity, user_id, image_ids, created_at, updated_at`

func scanProduct(row rowScanner) (*model.Product, error) {
	var (
		p      model.Product
		rawIDs []byte
	)
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Quantity,
		&p.UserID,
		&rawIDs,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	p.ImageIDs = []string{}
	if len(rawIDs) > 0 {
		if err := json.Unmarshal(rawIDs, &p.ImageIDs); err != nil {
			return nil, fmt.Errorf("decode image_ids: %w", err)
		}
	}
	return &p, nil
}

func encodeImageIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *ProductPostgres) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	ids, err := encodeImageIDs(p.ImageIDs)
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO products (id, name, description, price, quantity, user_id, image_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + productColumns
	return scanProduct(r.db.QueryRowContext(ctx, q,
		p.ID,
		p.Name,
		p.Description,
		p.Price,
		p.Quantity,
		p.UserID,
		ids,
		p.CreatedAt,
		p.UpdatedAt,
	))
}

func (r *ProductPostgres) FindByID(ctx context.Context, id string) (*model.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.db.QueryRowContext(ctx, q, id))
}

func (r *ProductPostgres) FindAll(ctx context.Context) ([]model.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q)
}

func (r *ProductPostgres) FindByUserID(ctx context.Context, userID string) ([]model.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, userID)
}

func (r *ProductPostgres) list(ctx context.Context, q string, args ...any) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update replaces every mutable column of the product. Ownership is not re-checked here.
func (r *ProductPostgres) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	ids, err := encodeImageIDs(p.ImageIDs)
	if err != nil {
		return nil, err
	}
	const q = `
		UPDATE products
		SET name = $2, description = $3, price = $4, quantity = $5, image_ids = $6, updated_at = $7
		WHERE id = $1
		RETURNING ` + productColumns
	return scanProduct(r.db.QueryRowContext(ctx, q,
		p.ID,
		p.Name,
		p.Description,
		p.Price,
		p.Quantity,
		ids,
		p.UpdatedAt,
	))
}

func (r *ProductPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}
