package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string          `gorm:"size:128;not null;uniqueIndex:idx_products_user_name,priority:1" json:"user_id"`
	Name         string          `gorm:"size:255;not null;uniqueIndex:idx_products_user_name,priority:2" json:"name"`
	OrderPrice   decimal.Decimal `gorm:"type:numeric;not null" json:"order_price"`
	SellingPrice decimal.Decimal `gorm:"type:numeric;not null" json:"selling_price"`
	ReserveStock decimal.Decimal `gorm:"type:numeric;not null" json:"reserve_stock"`
	MarketStock  decimal.Decimal `gorm:"type:numeric;not null" json:"market_stock"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;index" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
