package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pratyek/grocery-app/internal/domain/model"
	repo "github.com/pratyek/grocery-app/internal/repository"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("order_items.id asc")
}

func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	// gorm inserts Items through the association in the same transaction
	return mapError(r.db.WithContext(ctx).Create(order).Error)
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Where("id = ?", orderID).
		First(&o).Error
	if err != nil {
		return model.Order{}, mapError(err)
	}
	return o, nil
}

func (r *OrderGormRepository) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(&o).Error
	if err != nil {
		return model.Order{}, mapError(err)
	}
	return o, nil
}

func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	var orders []model.Order
	if err := listQuery(r.db.WithContext(ctx), f).Preload("Items", preloadItems).Find(&orders).Error; err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}

func listQuery(db *gorm.DB, f repo.OrderListFilter) *gorm.DB {
	q := db.Model(&model.Order{})

	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	q = q.Order("created_at desc").Order("id desc")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	return q
}

// Writes even when the value is unchanged.
func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
