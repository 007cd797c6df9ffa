package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atlasmedina/medina-backend/pkg/enums"
)

// Order is created once at checkout. TotalAmount is frozen at creation and
// never recomputed; only Status (and UpdatedAt) mutate afterwards.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderNumber    string            `gorm:"column:order_number;not null;uniqueIndex" json:"order_number"`
	CustomerName   string            `gorm:"column:customer_name;not null" json:"customer_name"`
	CustomerPhone  string            `gorm:"column:customer_phone;not null" json:"customer_phone"`
	CustomerEmail  *string           `gorm:"column:customer_email" json:"customer_email"`
	City           string            `gorm:"column:city;not null" json:"city"`
	Address        string            `gorm:"column:address;not null" json:"address"`
	AdditionalInfo *string           `gorm:"column:additional_info" json:"additional_info"`
	Notes          *string           `gorm:"column:notes" json:"notes"`
	TotalAmount    decimal.Decimal   `gorm:"column:total_amount;type:numeric(10,2);not null" json:"total_amount"`
	Status         enums.OrderStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	Items          []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
