package repository

import (
	"context"
	"errors"

	"github.com/pratyek/grocery-app/internal/domain/model"
)

var (
	ErrNotFound = errors.New("not found")
	// unique constraint violation
	ErrConflict = errors.New("conflict")
)

type ProductListQuery struct {
	Q      string
	Limit  int // 0 = no limit
	Offset int
}

type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	Count(ctx context.Context) (int64, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	SoftDelete(ctx context.Context, id int64) error
}
