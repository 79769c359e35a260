package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/stocksync/internal/models"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

var base = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func clientID(s string) *string { return &s }

func tx(user, client string, date, created time.Time) *models.Transaction {
	row := &models.Transaction{
		ID:          uuid.New(),
		UserID:      user,
		Date:        date,
		ProductName: "Maize",
		Quantity:    decimal.NewFromInt(1),
		CreatedAt:   created,
	}
	if client != "" {
		row.ClientID = clientID(client)
	}
	return row
}

func loan(user, id string, at time.Time) *models.Loan {
	return &models.Loan{
		ID:        uuid.New(),
		UserID:    user,
		LoanID:    id,
		Status:    "pending",
		Products:  datatypes.JSON("[]"),
		Reminders: datatypes.JSON("[]"),
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func product(user, name string, stock int64, at time.Time) *models.Product {
	return &models.Product{
		ID:          uuid.New(),
		UserID:      user,
		Name:        name,
		MarketStock: decimal.NewFromInt(stock),
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func TestInsertTransactionDedupesClientID(t *testing.T) {
	s := New()
	ctx := context.Background()

	var results []bool
	err := s.WithinTransaction(ctx, func(w store.Writer) error {
		for _, row := range []*models.Transaction{
			tx("u1", "a", base, base),
			tx("u1", "a", base, base),
			tx("u2", "a", base, base),
			tx("u1", "", base, base),
			tx("u1", "", base, base),
		} {
			ok, err := w.InsertTransaction(ctx, row)
			if err != nil {
				return err
			}
			results = append(results, ok)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true, true, true}, results)

	snap, err := s.Snapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, snap.Transactions, 3)
}

func TestWithinTransactionRollsBack(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.WithinTransaction(ctx, func(w store.Writer) error {
		return w.UpsertProduct(ctx, product("u1", "Maize", 10, base))
	}))

	boom := errors.New("boom")
	err := s.WithinTransaction(ctx, func(w store.Writer) error {
		if err := w.UpsertProduct(ctx, product("u1", "Maize", 1, base.Add(time.Hour))); err != nil {
			return err
		}
		if _, err := w.InsertTransaction(ctx, tx("u1", "", base, base)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	snap, err := s.Snapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, snap.Transactions)
	require.Len(t, snap.Products, 1)
	assert.True(t, snap.Products[0].MarketStock.Equal(decimal.NewFromInt(10)))
}

func TestWithinTransactionCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())

	err := s.WithinTransaction(ctx, func(w store.Writer) error {
		if err := w.UpsertLoan(ctx, loan("u1", "L1", base)); err != nil {
			return err
		}
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	snap, err := s.Snapshot(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, snap.Loans)
}

func TestUpsertKeepsOneRowPerKey(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := loan("u1", "L1", base)
	second := loan("u1", "L1", base.Add(time.Hour))
	second.Status = "paid"

	require.NoError(t, s.WithinTransaction(ctx, func(w store.Writer) error {
		if err := w.UpsertLoan(ctx, first); err != nil {
			return err
		}
		return w.UpsertLoan(ctx, second)
	}))

	snap, err := s.Snapshot(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, snap.Loans, 1)
	got := snap.Loans[0]
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "paid", got.Status)
	assert.Equal(t, base, got.CreatedAt)
	assert.Equal(t, base.Add(time.Hour), got.UpdatedAt)
}

func TestCountChangesIsStrictlyAfter(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.WithinTransaction(ctx, func(w store.Writer) error {
		if _, err := w.InsertTransaction(ctx, tx("u1", "", base, base)); err != nil {
			return err
		}
		if _, err := w.InsertTransaction(ctx, tx("u1", "", base, base.Add(time.Minute))); err != nil {
			return err
		}
		if err := w.UpsertLoan(ctx, loan("u1", "L1", base.Add(time.Minute))); err != nil {
			return err
		}
		if err := w.UpsertProduct(ctx, product("u1", "Maize", 1, base)); err != nil {
			return err
		}
		return w.UpsertProduct(ctx, product("u2", "Maize", 1, base.Add(time.Minute)))
	}))

	counts, err := s.CountChanges(ctx, "u1", base)
	require.NoError(t, err)
	assert.Equal(t, store.ChangeCounts{NewTransactions: 1, UpdatedLoans: 1, UpdatedProducts: 0}, counts)
	assert.True(t, counts.Any())

	counts, err = s.CountChanges(ctx, "u1", base.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, counts.Any())

	counts, err = s.CountChanges(ctx, "nobody", time.Unix(0, 0))
	require.NoError(t, err)
	assert.False(t, counts.Any())
}

func TestSnapshotOrdering(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.WithinTransaction(ctx, func(w store.Writer) error {
		rows := []*models.Transaction{
			tx("u1", "old", base, base),
			tx("u1", "new", base.Add(48*time.Hour), base),
			tx("u1", "mid-late", base.Add(24*time.Hour), base.Add(time.Minute)),
			tx("u1", "mid-early", base.Add(24*time.Hour), base),
		}
		for _, r := range rows {
			if _, err := w.InsertTransaction(ctx, r); err != nil {
				return err
			}
		}
		for i, id := range []string{"L1", "L2", "L3"} {
			if err := w.UpsertLoan(ctx, loan("u1", id, base.Add(time.Duration(i)*time.Hour))); err != nil {
				return err
			}
		}
		for _, name := range []string{"Rice", "Beans", "Maize"} {
			if err := w.UpsertProduct(ctx, product("u1", name, 1, base)); err != nil {
				return err
			}
		}
		return nil
	}))

	snap, err := s.Snapshot(ctx, "u1")
	require.NoError(t, err)

	var txIDs []string
	for _, r := range snap.Transactions {
		txIDs = append(txIDs, *r.ClientID)
	}
	assert.Equal(t, []string{"new", "mid-late", "mid-early", "old"}, txIDs)

	var loanIDs []string
	for _, l := range snap.Loans {
		loanIDs = append(loanIDs, l.LoanID)
	}
	assert.Equal(t, []string{"L3", "L2", "L1"}, loanIDs)

	var names []string
	for _, p := range snap.Products {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Beans", "Maize", "Rice"}, names)
	assert.Nil(t, snap.Settings)
}

func TestSnapshotEmptyUser(t *testing.T) {
	snap, err := New().Snapshot(context.Background(), "ghost")
	require.NoError(t, err)
	assert.NotNil(t, snap.Transactions)
	assert.Empty(t, snap.Transactions)
	assert.NotNil(t, snap.Loans)
	assert.NotNil(t, snap.Products)
	assert.Nil(t, snap.Settings)
}

func TestSettingsSingleton(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i, data := range []string{`{"a":1}`, `{"b":2}`} {
		row := &models.Settings{
			ID:        uuid.New(),
			UserID:    "u1",
			Data:      datatypes.JSON(data),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, s.WithinTransaction(ctx, func(w store.Writer) error {
			return w.UpsertSettings(ctx, row)
		}))
	}

	snap, err := s.Snapshot(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, snap.Settings)
	assert.JSONEq(t, `{"b":2}`, string(snap.Settings.Data))
	assert.Equal(t, base, snap.Settings.CreatedAt)
}

func TestConcurrentBatchesSameKey(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.WithinTransaction(ctx, func(w store.Writer) error {
				return w.UpsertProduct(ctx, product("u1", "Maize", int64(i), base.Add(time.Duration(i)*time.Second)))
			})
		}(i)
	}
	wg.Wait()

	snap, err := s.Snapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, snap.Products, 1)
}

func TestSnapshotBreaksTransactionTiesByID(t *testing.T) {
	s := New()
	ctx := context.Background()

	low := tx("u1", "low", base, base)
	low.ID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	high := tx("u1", "high", base, base)
	high.ID = uuid.MustParse("ffffffff-0000-0000-0000-000000000000")
	mid := tx("u1", "mid", base, base)
	mid.ID = uuid.MustParse("7fffffff-0000-0000-0000-000000000000")

	require.NoError(t, s.WithinTransaction(ctx, func(w store.Writer) error {
		for _, r := range []*models.Transaction{low, high, mid} {
			if _, err := w.InsertTransaction(ctx, r); err != nil {
				return err
			}
		}
		return nil
	}))

	snap, err := s.Snapshot(ctx, "u1")
	require.NoError(t, err)
	var got []string
	for _, r := range snap.Transactions {
		got = append(got, *r.ClientID)
	}
	assert.Equal(t, []string{"high", "mid", "low"}, got)
}
