// Package rules holds the per-entity merge rules applied during a batch sync.
//
// Each entity has a builder turning a validated client record into the row
// that should be persisted, and a merge function deciding the stored result
// given the row that already exists under the same natural key (or nil).
// The mutable column lists are the same rules expressed for stores with a
// native insert-or-update primitive.
package rules

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/stocksync/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Columns overwritten when a row with the same natural key already exists.
var (
	LoanMutableColumns = []string{
		"full_name", "phone", "national_id", "date_taken", "date_paid",
		"total_amount", "status", "products", "reminders",
		"reminder_sent", "last_reminder_sent", "updated_at",
	}
	ProductMutableColumns  = []string{"order_price", "selling_price", "reserve_stock", "market_stock", "updated_at"}
	SettingsMutableColumns = []string{"data", "updated_at"}
)

func NewTransaction(userID string, rec dto.TransactionRecord, now time.Time) models.Transaction {
	row := models.Transaction{
		ID:           uuid.New(),
		UserID:       userID,
		Date:         rec.Date.Time,
		ProductID:    rec.ProductID.String(),
		ProductName:  strings.TrimSpace(rec.ProductName),
		Quantity:     rec.Quantity,
		OrderPrice:   rec.OrderPrice,
		SellingPrice: rec.SellingPrice,
		Profit:       rec.Profit,
		CreatedAt:    now,
	}
	if id := rec.ID.String(); id != "" {
		row.ClientID = &id
	}
	return row
}

// MergeTransaction never merges: an existing row always wins and the
// incoming one is dropped. The bool reports whether incoming should be stored.
func MergeTransaction(existing *models.Transaction, incoming models.Transaction) (models.Transaction, bool) {
	if existing != nil {
		return *existing, false
	}
	return incoming, true
}

func NewLoan(userID string, rec dto.LoanRecord, now time.Time) models.Loan {
	reminderSent := false
	if rec.ReminderSent != nil {
		reminderSent = *rec.ReminderSent
	}
	return models.Loan{
		ID:               uuid.New(),
		UserID:           userID,
		LoanID:           rec.ID.String(),
		FullName:         rec.FullName,
		Phone:            rec.Phone.String(),
		NationalID:       rec.NationalID.String(),
		DateTaken:        rec.DateTaken.Ptr(),
		DatePaid:         rec.DatePaid.Ptr(),
		TotalAmount:      rec.TotalAmount,
		Status:           rec.Status,
		Products:         listOrEmpty(rec.Products),
		Reminders:        listOrEmpty(rec.Reminders),
		ReminderSent:     reminderSent,
		LastReminderSent: rec.LastReminderSent.Ptr(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// MergeLoan replaces every mutable field of existing with incoming's and
// takes incoming's modification time. Identity and creation time are kept.
func MergeLoan(existing *models.Loan, incoming models.Loan) models.Loan {
	if existing == nil {
		return incoming
	}
	merged := incoming
	merged.ID = existing.ID
	merged.UserID = existing.UserID
	merged.LoanID = existing.LoanID
	merged.CreatedAt = existing.CreatedAt
	return merged
}

func NewProduct(userID string, rec dto.ProductRecord, now time.Time) models.Product {
	return models.Product{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         strings.TrimSpace(rec.Name),
		OrderPrice:   rec.OrderPrice,
		SellingPrice: rec.SellingPrice,
		ReserveStock: rec.ReserveStock,
		MarketStock:  rec.MarketStock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func MergeProduct(existing *models.Product, incoming models.Product) models.Product {
	if existing == nil {
		return incoming
	}
	merged := *existing
	merged.OrderPrice = incoming.OrderPrice
	merged.SellingPrice = incoming.SellingPrice
	merged.ReserveStock = incoming.ReserveStock
	merged.MarketStock = incoming.MarketStock
	merged.UpdatedAt = incoming.UpdatedAt
	return merged
}

func NewSettings(userID string, data json.RawMessage, now time.Time) models.Settings {
	return models.Settings{
		ID:        uuid.New(),
		UserID:    userID,
		Data:      datatypes.JSON(bytes.Clone(data)),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MergeSettings replaces the whole blob.
func MergeSettings(existing *models.Settings, incoming models.Settings) models.Settings {
	if existing == nil {
		return incoming
	}
	merged := *existing
	merged.Data = incoming.Data
	merged.UpdatedAt = incoming.UpdatedAt
	return merged
}

func listOrEmpty(raw json.RawMessage) datatypes.JSON {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(bytes.Clone(trimmed))
}
