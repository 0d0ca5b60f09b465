package repository

import (
	"context"

	"github.com/pratyek/grocery-app/internal/domain/model"
)

// Server-synced cart storage.
type CartRepository interface {
	// Locks the cart row until the surrounding transaction ends.
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	ListItems(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// Replaces every line of the cart; items are stored in slice order.
	ReplaceItems(ctx context.Context, cartID int64, items []model.CartItem) error
}
