package postgres

import (
	"context"
	"database/sql"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

// MediaPostgres is a PostgreSQL implementation of repository.MediaRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type MediaPostgres struct {
	db *sql.DB
}

// NewMediaPostgres creates a new MediaPostgres repository.
func NewMediaPostgres(db *sql.DB) *MediaPostgres {
	return &MediaPostgres{db: db}
}

var _ repository.MediaRepository = (*MediaPostgres)(nil)

const mediaColumns = `id, file_name, content_type, file_size, image_path, product_id, user_id, created_at`

func scanMedia(row rowScanner) (*model.Media, error) {
	var m model.Media
	if err := row.Scan(
		&m.ID,
		&m.FileName,
		&m.ContentType,
		&m.FileSize,
		&m.ImagePath,
		&m.ProductID,
		&m.UserID,
		&m.CreatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// Create inserts a new media row and returns the stored record.
func (r *MediaPostgres) Create(ctx context.Context, m *model.Media) (*model.Media, error) {
	const q = `
		INSERT INTO media (id, file_name, content_type, file_size, image_path, product_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + mediaColumns
	return scanMedia(r.db.QueryRowContext(ctx, q,
		m.ID,
		m.FileName,
		m.ContentType,
		m.FileSize,
		m.ImagePath,
		m.ProductID,
		m.UserID,
		m.CreatedAt,
	))
}

// FindByID fetches a single media row by its ID.
func (r *MediaPostgres) FindByID(ctx context.Context, id string) (*model.Media, error) {
	const q = `SELECT ` + mediaColumns + ` FROM media WHERE id = $1`
	return scanMedia(r.db.QueryRowContext(ctx, q, id))
}

func (r *MediaPostgres) FindByProductID(ctx context.Context, productID string) ([]model.Media, error) {
	const q = `SELECT ` + mediaColumns + ` FROM media WHERE product_id = $1 ORDER BY created_at ASC, id ASC`
	return r.list(ctx, q, productID)
}

func (r *MediaPostgres) FindByUserID(ctx context.Context, userID string) ([]model.Media, error) {
	const q = `SELECT ` + mediaColumns + ` FROM media WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, userID)
}

func (r *MediaPostgres) list(ctx context.Context, q string, args ...any) ([]model.Media, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Media, 0)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a media row by ID.
func (r *MediaPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}
