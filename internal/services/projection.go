package services

import (
	"encoding/json"

	"github.com/ahmetcoskunkizilkaya/stocksync/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/models"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/store"
)

var emptySettings = json.RawMessage(`{}`)

func projectSnapshot(snap *store.Snapshot) *dto.SnapshotResponse {
	resp := &dto.SnapshotResponse{
		Transactions: make([]dto.TransactionView, 0, len(snap.Transactions)),
		Loans:        make([]dto.LoanView, 0, len(snap.Loans)),
		Products:     make([]dto.ProductView, 0, len(snap.Products)),
		Settings:     emptySettings,
	}
	for _, t := range snap.Transactions {
		resp.Transactions = append(resp.Transactions, transactionView(t))
	}
	for _, l := range snap.Loans {
		resp.Loans = append(resp.Loans, loanView(l))
	}
	for _, p := range snap.Products {
		resp.Products = append(resp.Products, productView(p))
	}
	if snap.Settings != nil && len(snap.Settings.Data) > 0 {
		resp.Settings = json.RawMessage(snap.Settings.Data)
	}
	return resp
}

func transactionView(t models.Transaction) dto.TransactionView {
	id := t.ID.String()
	if t.ClientID != nil {
		id = *t.ClientID
	}
	return dto.TransactionView{
		ID:           id,
		Date:         t.Date,
		ProductID:    t.ProductID,
		ProductName:  t.ProductName,
		Quantity:     t.Quantity.InexactFloat64(),
		OrderPrice:   t.OrderPrice.InexactFloat64(),
		SellingPrice: t.SellingPrice.InexactFloat64(),
		Profit:       t.Profit.InexactFloat64(),
		CreatedAt:    t.CreatedAt,
	}
}

func loanView(l models.Loan) dto.LoanView {
	return dto.LoanView{
		ID:               l.LoanID,
		FullName:         l.FullName,
		Phone:            l.Phone,
		NationalID:       l.NationalID,
		DateTaken:        l.DateTaken,
		DatePaid:         l.DatePaid,
		TotalAmount:      l.TotalAmount.InexactFloat64(),
		Status:           l.Status,
		Products:         jsonListOrEmpty(l.Products),
		Reminders:        jsonListOrEmpty(l.Reminders),
		ReminderSent:     l.ReminderSent,
		LastReminderSent: l.LastReminderSent,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

func productView(p models.Product) dto.ProductView {
	return dto.ProductView{
		Name:         p.Name,
		OrderPrice:   p.OrderPrice.InexactFloat64(),
		SellingPrice: p.SellingPrice.InexactFloat64(),
		ReserveStock: p.ReserveStock.InexactFloat64(),
		MarketStock:  p.MarketStock.InexactFloat64(),
		UpdatedAt:    p.UpdatedAt,
	}
}

func jsonListOrEmpty(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`[]`)
	}
	return json.RawMessage(raw)
}
