package dto

import (
	"encoding/json"
	"time"
)

type SnapshotResponse struct {
	Transactions []TransactionView `json:"transactions"`
	Loans        []LoanView        `json:"loans"`
	Products     []ProductView     `json:"products"`
	Settings     json.RawMessage   `json:"settings"`
}

// TransactionView.ID is the client id when one was synced, otherwise the
// server row id.
type TransactionView struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	ProductID    string    `json:"productId"`
	ProductName  string    `json:"productName"`
	Quantity     float64   `json:"quantity"`
	OrderPrice   float64   `json:"orderPrice"`
	SellingPrice float64   `json:"sellingPrice"`
	Profit       float64   `json:"profit"`
	CreatedAt    time.Time `json:"createdAt"`
}

type LoanView struct {
	ID               string          `json:"id"`
	FullName         string          `json:"fullName"`
	Phone            string          `json:"phone"`
	NationalID       string          `json:"nationalId"`
	DateTaken        *time.Time      `json:"dateTaken"`
	DatePaid         *time.Time      `json:"datePaid"`
	TotalAmount      float64         `json:"totalAmount"`
	Status           string          `json:"status"`
	Products         json.RawMessage `json:"products"`
	Reminders        json.RawMessage `json:"reminders"`
	ReminderSent     bool            `json:"reminderSent"`
	LastReminderSent *time.Time      `json:"lastReminderSent"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type ProductView struct {
	Name         string    `json:"name"`
	OrderPrice   float64   `json:"orderPrice"`
	SellingPrice float64   `json:"sellingPrice"`
	ReserveStock float64   `json:"reserveStock"`
	MarketStock  float64   `json:"marketStock"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
