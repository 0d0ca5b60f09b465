package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusInProgress OrderStatus = "In Progress"
	OrderStatusDelivered  OrderStatus = "Delivered"
)

// ParseOrderStatus accepts only the three known values.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusDelivered:
		return OrderStatus(s), true
	default:
		return "", false
	}
}

// Only Status changes after creation.
type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderRef        string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_ref"`
	UserID          int64           `gorm:"not null;index" json:"user_id"`
	Username        string          `gorm:"type:varchar(100);not null" json:"username"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	DeliveryAddress string          `gorm:"type:text;not null" json:"delivery_address"`
	DeliveryPhone   string          `gorm:"type:varchar(30);not null" json:"delivery_phone"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
