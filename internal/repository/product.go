package repository

import (
	"context"

	"marketapi/internal/model"
)

// ProductRepository is the product service's private store.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) (*model.Product, error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByUserID(ctx context.Context, userID string) ([]model.Product, error)
	// Update replaces the whole record. There is no version check: last writer wins.
	Update(ctx context.Context, p *model.Product) (*model.Product, error)
	Delete(ctx context.Context, id string) error
}
