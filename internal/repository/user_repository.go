package repository

import (
	"context"

	"github.com/pratyek/grocery-app/internal/domain/model"
)

// Finders return (nil, nil) when no user matches.
type UserRepository interface {
	// ErrConflict on duplicate username or email
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
