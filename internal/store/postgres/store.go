// Package postgres implements store.Store on PostgreSQL through gorm.
//
// Upserts use INSERT ... ON CONFLICT on each entity's natural-key unique
// index, one statement per record, so concurrent batches touching the same
// key serialize on the row lock and a later record in a batch overwrites an
// earlier one.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/stocksync/internal/models"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/rules"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const countChangesQuery = `SELECT
	(SELECT COUNT(*) FROM transactions WHERE user_id = @user AND created_at > @since) AS new_transactions,
	(SELECT COUNT(*) FROM loans WHERE user_id = @user AND updated_at > @since) AS updated_loans,
	(SELECT COUNT(*) FROM products WHERE user_id = @user AND updated_at > @since) AS updated_products`

type changeCountsRow struct {
	NewTransactions int64
	UpdatedLoans    int64
	UpdatedProducts int64
}

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(w store.Writer) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&writer{tx: tx})
	})
}

func (s *Store) CountChanges(ctx context.Context, userID string, since time.Time) (store.ChangeCounts, error) {
	var row changeCountsRow
	err := s.db.WithContext(ctx).
		Raw(countChangesQuery, map[string]interface{}{"user": userID, "since": since}).
		Scan(&row).Error
	if err != nil {
		return store.ChangeCounts{}, fmt.Errorf("count changes: %w", err)
	}
	return store.ChangeCounts{
		NewTransactions: row.NewTransactions,
		UpdatedLoans:    row.UpdatedLoans,
		UpdatedProducts: row.UpdatedProducts,
	}, nil
}

// Snapshot reads all four tables in one read-only repeatable-read
// transaction so a concurrently committing batch is seen whole or not at all.
func (s *Store) Snapshot(ctx context.Context, userID string) (*store.Snapshot, error) {
	snap := &store.Snapshot{
		Transactions: []models.Transaction{},
		Loans:        []models.Loan{},
		Products:     []models.Product{},
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(ForUser(userID)).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
			Find(&snap.Transactions).Error; err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		if err := tx.Scopes(ForUser(userID)).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "loan_id"}}).
			Find(&snap.Loans).Error; err != nil {
			return fmt.Errorf("load loans: %w", err)
		}
		if err := tx.Scopes(ForUser(userID)).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "name"}}).
			Find(&snap.Products).Error; err != nil {
			return fmt.Errorf("load products: %w", err)
		}

		var settings []models.Settings
		if err := tx.Scopes(ForUser(userID)).Limit(1).Find(&settings).Error; err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		if len(settings) > 0 {
			snap.Settings = &settings[0]
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ForUser returns a gorm scope that filters by owning user.
func ForUser(userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

type writer struct {
	tx *gorm.DB
}

func (w *writer) InsertTransaction(ctx context.Context, row *models.Transaction) (bool, error) {
	res := w.tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "client_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, fmt.Errorf("insert transaction: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (w *writer) UpsertLoan(ctx context.Context, row *models.Loan) error {
	err := w.tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "loan_id"}},
			DoUpdates: clause.AssignmentColumns(rules.LoanMutableColumns),
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("upsert loan %q: %w", row.LoanID, err)
	}
	return nil
}

func (w *writer) UpsertProduct(ctx context.Context, row *models.Product) error {
	err := w.tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns(rules.ProductMutableColumns),
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Name, err)
	}
	return nil
}

func (w *writer) UpsertSettings(ctx context.Context, row *models.Settings) error {
	err := w.tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(rules.SettingsMutableColumns),
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
