package repository

import (
	"context"

	"marketapi/internal/model"
)

// UserRepository is the user service's private store. Email uniqueness is enforced
// here, at insert time, and reported as ErrDuplicate.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Update replaces the whole record.
	Update(ctx context.Context, u *model.User) (*model.User, error)
	Delete(ctx context.Context, id string) error
}
