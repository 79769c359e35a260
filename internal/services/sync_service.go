package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/stocksync/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/rules"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/store"
)

// SyncService merges client batches into the store and serves the two read
// projections clients use to pull state back.
type SyncService struct {
	store       store.Store
	syncTimeout time.Duration
	readTimeout time.Duration
	now         func() time.Time
}

func NewSyncService(st store.Store, syncTimeout, readTimeout time.Duration) *SyncService {
	return &SyncService{
		store:       st,
		syncTimeout: syncTimeout,
		readTimeout: readTimeout,
		now:         time.Now,
	}
}

type syncSummary struct {
	transactions int
	duplicates   int
	loans        int
	products     int
	settings     bool
}

// Sync applies the batch in one unit of work: transactions, loans, products,
// then settings, each collection in submission order. Either every record is
// stored or none is.
func (s *SyncService) Sync(ctx context.Context, req *dto.SyncRequest) (*dto.SyncResponse, error) {
	batch, err := DecodeBatch(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.syncTimeout)
	defer cancel()

	start := s.now()
	now := start.UTC()
	var summary syncSummary

	err = s.store.WithinTransaction(ctx, func(w store.Writer) error {
		summary = syncSummary{}

		for i, rec := range batch.Transactions {
			row := rules.NewTransaction(batch.UserID, rec, now)
			inserted, err := w.InsertTransaction(ctx, &row)
			if err != nil {
				return fmt.Errorf("transactions[%d]: %w", i, err)
			}
			if inserted {
				summary.transactions++
			} else {
				summary.duplicates++
			}
		}

		for i, rec := range batch.Loans {
			row := rules.NewLoan(batch.UserID, rec, now)
			if err := w.UpsertLoan(ctx, &row); err != nil {
				return fmt.Errorf("loans[%d]: %w", i, err)
			}
			summary.loans++
		}

		for i, rec := range batch.Products {
			row := rules.NewProduct(batch.UserID, rec, now)
			if err := w.UpsertProduct(ctx, &row); err != nil {
				return fmt.Errorf("products[%d]: %w", i, err)
			}
			summary.products++
		}

		if batch.Settings != nil {
			row := rules.NewSettings(batch.UserID, batch.Settings, now)
			if err := w.UpsertSettings(ctx, &row); err != nil {
				return fmt.Errorf("settings: %w", err)
			}
			summary.settings = true
		}
		return nil
	})
	if err != nil {
		slog.Error("batch sync rolled back",
			"op", "sync",
			"user_id", batch.UserID,
			"error", err.Error(),
		)
		return nil, &SyncFailure{Err: err}
	}

	syncedAt := s.now().UTC()
	slog.Info("batch synced",
		"op", "sync",
		"user_id", batch.UserID,
		"transactions", summary.transactions,
		"duplicates_ignored", summary.duplicates,
		"loans", summary.loans,
		"products", summary.products,
		"settings", summary.settings,
		"latency_ms", float64(syncedAt.Sub(start).Microseconds())/1000,
	)
	return &dto.SyncResponse{Success: true, SyncedAt: syncedAt}, nil
}

// ParseSince parses a client "since" value, falling back to the epoch when
// it is absent or unparseable.
func ParseSince(raw string) time.Time {
	if t, err := dto.ParseTime(raw); err == nil {
		return t
	}
	return time.Unix(0, 0).UTC()
}

// CheckUpdates counts what changed after since without loading any rows.
//
// Rows are stamped with their batch's start time but only become visible at
// commit, up to syncTimeout later. ServerTime is therefore the probe time
// minus syncTimeout, so a client that uses it as its next since still sees
// any batch that was in flight during this probe. A change may be reported
// twice.
func (s *SyncService) CheckUpdates(ctx context.Context, userID string, since time.Time) (*dto.UpdatesResponse, error) {
	id, err := ValidateUserID(userID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()

	serverTime := s.watermark()
	counts, err := s.store.CountChanges(ctx, id, since)
	if err != nil {
		slog.Error("change detection failed", "op", "check_updates", "user_id", id, "error", err.Error())
		return nil, &ReadFailure{Op: "check updates", Err: err}
	}

	return &dto.UpdatesResponse{
		HasUpdates: counts.Any(),
		Details: dto.UpdateDetails{
			NewTransactions: counts.NewTransactions,
			UpdatedLoans:    counts.UpdatedLoans,
			UpdatedProducts: counts.UpdatedProducts,
		},
		ServerTime: serverTime,
	}, nil
}

// watermark is the latest time no uncommitted batch can still be stamped
// before.
func (s *SyncService) watermark() time.Time {
	now := s.now().UTC()
	if s.syncTimeout <= 0 {
		return now
	}
	return now.Add(-s.syncTimeout)
}

func (s *SyncService) GetSnapshot(ctx context.Context, userID string) (*dto.SnapshotResponse, error) {
	id, err := ValidateUserID(userID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()

	snap, err := s.store.Snapshot(ctx, id)
	if err != nil {
		slog.Error("snapshot read failed", "op", "snapshot", "user_id", id, "error", err.Error())
		return nil, &ReadFailure{Op: "snapshot", Err: err}
	}
	return projectSnapshot(snap), nil
}

func (s *SyncService) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()
	return s.store.Ping(ctx)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
