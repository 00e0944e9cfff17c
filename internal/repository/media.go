package repository

import (
	"context"

	"marketapi/internal/model"
)

// MediaRepository is the media service's private metadata store.
type MediaRepository interface {
	Create(ctx context.Context, m *model.Media) (*model.Media, error)
	FindByID(ctx context.Context, id string) (*model.Media, error)
	FindByProductID(ctx context.Context, productID string) ([]model.Media, error)
	FindByUserID(ctx context.Context, userID string) ([]model.Media, error)
	// Delete returns ErrNotFound when no row was removed.
	Delete(ctx context.Context, id string) error
}
