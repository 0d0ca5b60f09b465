package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pratyek/grocery-app/internal/domain/model"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// Finds the user's cart with FOR UPDATE, creating it if missing.
// Call inside a transaction so the lock serializes concurrent edits.
func (r *CartGormRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	var cart model.Cart

	findErr := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if findErr == nil {
		return cart, nil
	}
	if !errors.Is(findErr, gorm.ErrRecordNotFound) {
		return model.Cart{}, findErr
	}

	// a concurrent request may have created it; ON CONFLICT keeps the tx usable
	newCart := model.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&newCart).Error; err != nil {
		return model.Cart{}, err
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error; err != nil {
		return model.Cart{}, mapError(err)
	}
	return cart, nil
}

func (r *CartGormRepository) ListItems(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("position asc").
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}
	return items, nil
}

func (r *CartGormRepository) ReplaceItems(ctx context.Context, cartID int64, items []model.CartItem) error {
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	rows := make([]model.CartItem, len(items))
	for i, it := range items {
		it.ID = 0
		it.CartID = cartID
		it.Position = i
		rows[i] = it
	}
	return mapError(r.db.WithContext(ctx).Create(&rows).Error)
}
