package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart line.
// Name and price are captured when the product is added.
type CartItem struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID              int64           `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`
	ProductID           int64           `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"product_id"`
	ProductNameSnapshot string          `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	UnitPriceSnapshot   decimal.Decimal `gorm:"type:numeric(12,2);not null;column:unit_price_snapshot" json:"unit_price_snapshot"`
	ImageSnapshot       string          `gorm:"type:text" json:"image_snapshot"`
	Quantity            int64           `gorm:"not null" json:"quantity"`
	Position            int             `gorm:"not null;default:0" json:"position"`
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
