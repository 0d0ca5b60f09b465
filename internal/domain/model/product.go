package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Used when a product is created without an image.
const DefaultProductImage = "https://via.placeholder.com/150"

func init() {
	// prices go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Image       string          `gorm:"type:text;not null" json:"image"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}
