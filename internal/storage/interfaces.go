package storage

import (
	"context"
	"time"

	"whale-desk/internal/domain"
)

// BiasStore persists aggregate bias snapshots.
type BiasStore interface {
	// Insert appends a new bias snapshot.
	Insert(ctx context.Context, b *domain.BiasResult) error

	// Latest retrieves the most recent snapshot per (asset, timeframe),
	// optionally filtered to the given assets (nil/empty = all assets).
	// Results are ordered by asset ASC, timeframe ASC.
	Latest(ctx context.Context, assets []string) ([]*domain.BiasResult, error)
}

// WalletStatsStore persists wallet trade history used for scoring.
type WalletStatsStore interface {
	// Insert adds stats for a wallet. Returns ErrDuplicateKey if wallet_id exists.
	Insert(ctx context.Context, s *domain.WalletStats) error

	// GetByID retrieves stats by wallet id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, walletID string) (*domain.WalletStats, error)

	// GetAll retrieves stats for every known wallet, ordered by wallet id ASC.
	GetAll(ctx context.Context) ([]*domain.WalletStats, error)
}

// ExecutionEventStore persists order-submission telemetry. Append-only.
type ExecutionEventStore interface {
	// Insert appends an execution event. Returns ErrDuplicateKey if event_id exists.
	Insert(ctx context.Context, e *domain.ExecutionEvent) error

	// GetByStatus retrieves events with the given status, ordered by timestamp ASC.
	GetByStatus(ctx context.Context, status string) ([]*domain.ExecutionEvent, error)

	// GetByTimeRange retrieves events within [start, end] (inclusive), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.ExecutionEvent, error)
}
