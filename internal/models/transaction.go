package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is an append-only sale record. ClientID is only set when the
// client supplied its own id, and is the sole duplicate-submission guard.
type Transaction struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string          `gorm:"size:128;not null;index:idx_transactions_user_date,priority:1;uniqueIndex:idx_transactions_user_client,priority:1" json:"user_id"`
	ClientID     *string         `gorm:"size:128;uniqueIndex:idx_transactions_user_client,priority:2" json:"client_id"`
	Date         time.Time       `gorm:"not null;index:idx_transactions_user_date,priority:2" json:"date"`
	ProductID    string          `gorm:"size:128" json:"product_id"`
	ProductName  string          `gorm:"size:255;not null" json:"product_name"`
	Quantity     decimal.Decimal `gorm:"type:numeric;not null" json:"quantity"`
	OrderPrice   decimal.Decimal `gorm:"type:numeric;not null" json:"order_price"`
	SellingPrice decimal.Decimal `gorm:"type:numeric;not null" json:"selling_price"`
	Profit       decimal.Decimal `gorm:"type:numeric;not null" json:"profit"`
	CreatedAt    time.Time       `gorm:"not null;index" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
