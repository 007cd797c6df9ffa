package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is the canonical storefront listing. Prices are stored as exact
// decimals; Promo holds an optional percentage such as "8%" or "15".
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name         string          `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description  string          `gorm:"column:description;not null;default:''" json:"description"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	Promo        *string         `gorm:"column:promo" json:"promo"`
	IsBestSeller bool            `gorm:"column:is_best_seller;not null;default:false" json:"is_best_seller"`
	CategoryID   *uuid.UUID      `gorm:"column:category_id;type:uuid" json:"category_id"`
	Category     *Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Images       pq.StringArray  `gorm:"column:images;type:text[];not null" json:"images"`
	Stock        int             `gorm:"column:stock;not null;default:0" json:"stock"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
