package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is an immutable snapshot of a cart line taken at order creation.
// ProductID is a weak reference that survives product deletion; the name,
// price, promo and subtotal columns keep historical orders self-contained.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null" json:"order_id"`
	ProductID    *uuid.UUID      `gorm:"column:product_id;type:uuid" json:"product_id"`
	ProductName  string          `gorm:"column:product_name;not null" json:"product_name"`
	ProductPrice decimal.Decimal `gorm:"column:product_price;type:numeric(10,2);not null" json:"product_price"`
	Quantity     int             `gorm:"column:quantity;not null" json:"quantity"`
	PromoApplied *string         `gorm:"column:promo_applied" json:"promo_applied"`
	Subtotal     decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null" json:"subtotal"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
