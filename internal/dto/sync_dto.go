package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// SyncRequest is the body of POST /api/sync. Collections stay raw until the
// sync service has checked their shape: a collection that is not a JSON
// array (or, for settings, not an object) means "nothing to sync".
type SyncRequest struct {
	UserID       string          `json:"userId"`
	Transactions json.RawMessage `json:"transactions"`
	Loans        json.RawMessage `json:"loans"`
	Products     json.RawMessage `json:"products"`
	Settings     json.RawMessage `json:"settings"`
}

type TransactionRecord struct {
	ID           FlexString      `json:"id"`
	Date         FlexTime        `json:"date"`
	ProductID    FlexString      `json:"productId"`
	ProductName  string          `json:"productName"`
	Quantity     decimal.Decimal `json:"quantity"`
	OrderPrice   decimal.Decimal `json:"orderPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Profit       decimal.Decimal `json:"profit"`
}

type LoanRecord struct {
	ID               FlexString      `json:"id"`
	FullName         string          `json:"fullName"`
	Phone            FlexString      `json:"phone"`
	NationalID       FlexString      `json:"nationalId"`
	DateTaken        FlexTime        `json:"dateTaken"`
	DatePaid         FlexTime        `json:"datePaid"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Status           string          `json:"status"`
	Products         json.RawMessage `json:"products"`
	Reminders        json.RawMessage `json:"reminders"`
	ReminderSent     *bool           `json:"reminderSent"`
	LastReminderSent FlexTime        `json:"lastReminderSent"`
}

type ProductRecord struct {
	Name         string          `json:"name"`
	OrderPrice   decimal.Decimal `json:"orderPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	ReserveStock decimal.Decimal `json:"reserveStock"`
	MarketStock  decimal.Decimal `json:"marketStock"`
}

// SyncBatch is a SyncRequest after shape validation.
type SyncBatch struct {
	UserID       string
	Transactions []TransactionRecord
	Loans        []LoanRecord
	Products     []ProductRecord
	Settings     json.RawMessage
}

type SyncResponse struct {
	Success  bool      `json:"success"`
	SyncedAt time.Time `json:"syncedAt"`
}

type UpdateDetails struct {
	NewTransactions int64 `json:"newTransactions"`
	UpdatedLoans    int64 `json:"updatedLoans"`
	UpdatedProducts int64 `json:"updatedProducts"`
}

type UpdatesResponse struct {
	HasUpdates bool          `json:"hasUpdates"`
	Details    UpdateDetails `json:"details"`
	ServerTime time.Time     `json:"serverTime"`
}
