// Package memory is an in-process store.Store. A unit of work runs against a
// private copy of the state under the write lock and replaces the shared
// state only when it succeeds, so readers see each batch whole or not at all.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/stocksync/internal/models"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/rules"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/store"
)

type loanKey struct {
	userID string
	loanID string
}

type productKey struct {
	userID string
	name   string
}

type clientKey struct {
	userID   string
	clientID string
}

type state struct {
	transactions []models.Transaction
	clientIDs    map[clientKey]int
	loans        map[loanKey]models.Loan
	products     map[productKey]models.Product
	settings     map[string]models.Settings
}

func newState() *state {
	return &state{
		clientIDs: make(map[clientKey]int),
		loans:     make(map[loanKey]models.Loan),
		products:  make(map[productKey]models.Product),
		settings:  make(map[string]models.Settings),
	}
}

// clone copies the containers; rows are values and byte slices inside them
// are never mutated in place, so sharing them is safe.
func (s *state) clone() *state {
	c := &state{
		transactions: append([]models.Transaction(nil), s.transactions...),
		clientIDs:    make(map[clientKey]int, len(s.clientIDs)),
		loans:        make(map[loanKey]models.Loan, len(s.loans)),
		products:     make(map[productKey]models.Product, len(s.products)),
		settings:     make(map[string]models.Settings, len(s.settings)),
	}
	for k, v := range s.clientIDs {
		c.clientIDs[k] = v
	}
	for k, v := range s.loans {
		c.loans[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.settings {
		c.settings[k] = v
	}
	return c
}

type Store struct {
	mu    sync.RWMutex
	state *state
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{state: newState()}
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(w store.Writer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	if err := fn(&writer{state: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.state = work
	return nil
}

func (s *Store) CountChanges(ctx context.Context, userID string, since time.Time) (store.ChangeCounts, error) {
	if err := ctx.Err(); err != nil {
		return store.ChangeCounts{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var counts store.ChangeCounts
	for _, t := range s.state.transactions {
		if t.UserID == userID && t.CreatedAt.After(since) {
			counts.NewTransactions++
		}
	}
	for k, l := range s.state.loans {
		if k.userID == userID && l.UpdatedAt.After(since) {
			counts.UpdatedLoans++
		}
	}
	for k, p := range s.state.products {
		if k.userID == userID && p.UpdatedAt.After(since) {
			counts.UpdatedProducts++
		}
	}
	return counts, nil
}

func (s *Store) Snapshot(ctx context.Context, userID string) (*store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &store.Snapshot{
		Transactions: []models.Transaction{},
		Loans:        []models.Loan{},
		Products:     []models.Product{},
	}
	for _, t := range s.state.transactions {
		if t.UserID == userID {
			snap.Transactions = append(snap.Transactions, t)
		}
	}
	for k, l := range s.state.loans {
		if k.userID == userID {
			snap.Loans = append(snap.Loans, l)
		}
	}
	for k, p := range s.state.products {
		if k.userID == userID {
			snap.Products = append(snap.Products, p)
		}
	}
	if st, ok := s.state.settings[userID]; ok {
		snap.Settings = &st
	}

	// Same order as the postgres store: uuid columns compare bytewise there.
	sort.Slice(snap.Transactions, func(i, j int) bool {
		a, b := snap.Transactions[i], snap.Transactions[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) > 0
	})
	sort.Slice(snap.Loans, func(i, j int) bool {
		a, b := snap.Loans[i], snap.Loans[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.LoanID < b.LoanID
	})
	sort.Slice(snap.Products, func(i, j int) bool {
		return snap.Products[i].Name < snap.Products[j].Name
	})
	return snap, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

type writer struct {
	state *state
}

func (w *writer) InsertTransaction(ctx context.Context, row *models.Transaction) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var existing *models.Transaction
	var key clientKey
	if row.ClientID != nil {
		key = clientKey{userID: row.UserID, clientID: *row.ClientID}
		if idx, ok := w.state.clientIDs[key]; ok {
			existing = &w.state.transactions[idx]
		}
	}

	merged, keep := rules.MergeTransaction(existing, *row)
	if !keep {
		return false, nil
	}
	w.state.transactions = append(w.state.transactions, merged)
	if row.ClientID != nil {
		w.state.clientIDs[key] = len(w.state.transactions) - 1
	}
	return true, nil
}

func (w *writer) UpsertLoan(ctx context.Context, row *models.Loan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := loanKey{userID: row.UserID, loanID: row.LoanID}
	var existing *models.Loan
	if cur, ok := w.state.loans[key]; ok {
		existing = &cur
	}
	w.state.loans[key] = rules.MergeLoan(existing, *row)
	return nil
}

func (w *writer) UpsertProduct(ctx context.Context, row *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := productKey{userID: row.UserID, name: row.Name}
	var existing *models.Product
	if cur, ok := w.state.products[key]; ok {
		existing = &cur
	}
	w.state.products[key] = rules.MergeProduct(existing, *row)
	return nil
}

func (w *writer) UpsertSettings(ctx context.Context, row *models.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var existing *models.Settings
	if cur, ok := w.state.settings[row.UserID]; ok {
		existing = &cur
	}
	w.state.settings[row.UserID] = rules.MergeSettings(existing, *row)
	return nil
}
