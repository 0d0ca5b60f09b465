package repository

import (
	"context"

	"github.com/pratyek/grocery-app/internal/domain/model"
)

type OrderListFilter struct {
	UserID *int64
	Status string
	Limit  int // 0 = no limit
	Offset int
}

// Orders come back with Items loaded, newest first for List.
type OrderRepository interface {
	// Inserts the order and its items. ErrConflict on duplicate OrderRef.
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// Like FindByID but row-locks the order until the transaction ends.
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
}
