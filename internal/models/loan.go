package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Loan is keyed by (UserID, LoanID). Products and Reminders are opaque JSON
// arrays owned by the client; the server never interprets them.
type Loan struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           string          `gorm:"size:128;not null;uniqueIndex:idx_loans_user_loan,priority:1" json:"user_id"`
	LoanID           string          `gorm:"size:128;not null;uniqueIndex:idx_loans_user_loan,priority:2" json:"loan_id"`
	FullName         string          `gorm:"size:255" json:"full_name"`
	Phone            string          `gorm:"size:64" json:"phone"`
	NationalID       string          `gorm:"size:64" json:"national_id"`
	DateTaken        *time.Time      `json:"date_taken"`
	DatePaid         *time.Time      `json:"date_paid"`
	TotalAmount      decimal.Decimal `gorm:"type:numeric;not null" json:"total_amount"`
	Status           string          `gorm:"size:32" json:"status"`
	Products         datatypes.JSON  `gorm:"type:jsonb;not null" json:"products"`
	Reminders        datatypes.JSON  `gorm:"type:jsonb;not null" json:"reminders"`
	ReminderSent     bool            `gorm:"not null" json:"reminder_sent"`
	LastReminderSent *time.Time      `json:"last_reminder_sent"`
	CreatedAt        time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null;index" json:"updated_at"`
}

func (Loan) TableName() string {
	return "loans"
}
