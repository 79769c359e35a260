// Package store defines the entity store the sync service runs against.
// Implementations live in the postgres and memory subpackages.
package store

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/stocksync/internal/models"
)

// Store is the durable backing store for all four entity collections.
type Store interface {
	// WithinTransaction runs fn in one atomic unit of work. If fn returns an
	// error, or ctx ends before commit, nothing fn wrote is kept.
	WithinTransaction(ctx context.Context, fn func(w Writer) error) error

	// CountChanges counts the user's rows created (transactions) or modified
	// (loans, products) strictly after since, in a single read.
	CountChanges(ctx context.Context, userID string, since time.Time) (ChangeCounts, error)

	// Snapshot returns every row the user owns from one consistent read.
	Snapshot(ctx context.Context, userID string) (*Snapshot, error)

	Ping(ctx context.Context) error
}

// Writer applies single-record writes inside a unit of work. Every upsert is
// keyed on the entity's natural key and overwrites only its mutable columns.
type Writer interface {
	// InsertTransaction appends a row. A duplicate client id for the same user
	// is not an error: the existing row is kept and inserted is false.
	InsertTransaction(ctx context.Context, row *models.Transaction) (inserted bool, err error)
	UpsertLoan(ctx context.Context, row *models.Loan) error
	UpsertProduct(ctx context.Context, row *models.Product) error
	UpsertSettings(ctx context.Context, row *models.Settings) error
}

type ChangeCounts struct {
	NewTransactions int64
	UpdatedLoans    int64
	UpdatedProducts int64
}

func (c ChangeCounts) Any() bool {
	return c.NewTransactions > 0 || c.UpdatedLoans > 0 || c.UpdatedProducts > 0
}

// Snapshot holds rows in read order: transactions by date, creation and id
// descending, loans by creation descending then loan id, products by name.
// Settings is nil when the user has never synced settings.
type Snapshot struct {
	Transactions []models.Transaction
	Loans        []models.Loan
	Products     []models.Product
	Settings     *models.Settings
}
