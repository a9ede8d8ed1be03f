package postgres

import (
	"context"
	"fmt"

	"whale-desk/internal/domain"
	"whale-desk/internal/storage"
)

// WalletStatsStore implements storage.WalletStatsStore using PostgreSQL.
// Trade snapshots live in a child table keyed by (wallet_id, trade_index).
type WalletStatsStore struct {
	pool *Pool
}

// NewWalletStatsStore creates a new WalletStatsStore.
func NewWalletStatsStore(pool *Pool) *WalletStatsStore {
	return &WalletStatsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStatsStore = (*WalletStatsStore)(nil)

// Insert adds stats for a wallet. Returns ErrDuplicateKey if wallet_id exists.
func (s *WalletStatsStore) Insert(ctx context.Context, stats *domain.WalletStats) error {
	if stats == nil || stats.WalletID == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin wallet stats tx: %w", err)
	}
	defer tx.Rollback(ctx)

	statsQuery := `
		INSERT INTO wallet_stats (
			wallet_id, recent_events, liquidity_utilization, avg_size_usd, false_signal_rate
		) VALUES ($1, $2, $3, $4, $5)
	`
	_, err = tx.Exec(ctx, statsQuery,
		stats.WalletID,
		stats.RecentEvents,
		stats.LiquidityUtilization,
		stats.AvgSizeUSD,
		stats.FalseSignalRate,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert wallet stats: %w", err)
	}

	tradeQuery := `
		INSERT INTO wallet_trades (
			wallet_id, trade_index, pnl, entry_ts, exit_ts, duration_minutes
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, trade := range stats.Trades {
		_, err = tx.Exec(ctx, tradeQuery,
			stats.WalletID,
			i,
			trade.PnL,
			trade.EntryTimestamp,
			trade.ExitTimestamp,
			trade.DurationMinutes,
		)
		if err != nil {
			return fmt.Errorf("insert wallet trade %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit wallet stats tx: %w", err)
	}
	return nil
}

// GetByID retrieves stats by wallet id. Returns ErrNotFound if not exists.
func (s *WalletStatsStore) GetByID(ctx context.Context, walletID string) (*domain.WalletStats, error) {
	query := `
		SELECT wallet_id, recent_events, liquidity_utilization, avg_size_usd, false_signal_rate
		FROM wallet_stats
		WHERE wallet_id = $1
	`

	var stats domain.WalletStats
	err := s.pool.QueryRow(ctx, query, walletID).Scan(
		&stats.WalletID,
		&stats.RecentEvents,
		&stats.LiquidityUtilization,
		&stats.AvgSizeUSD,
		&stats.FalseSignalRate,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet stats by id: %w", err)
	}

	trades, err := s.tradesFor(ctx, []string{walletID})
	if err != nil {
		return nil, err
	}
	stats.Trades = trades[walletID]
	return &stats, nil
}

// GetAll retrieves stats for every known wallet, ordered by wallet id ASC.
func (s *WalletStatsStore) GetAll(ctx context.Context) ([]*domain.WalletStats, error) {
	query := `
		SELECT wallet_id, recent_events, liquidity_utilization, avg_size_usd, false_signal_rate
		FROM wallet_stats
		ORDER BY wallet_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all wallet stats: %w", err)
	}
	defer rows.Close()

	var result []*domain.WalletStats
	for rows.Next() {
		var stats domain.WalletStats
		err := rows.Scan(
			&stats.WalletID,
			&stats.RecentEvents,
			&stats.LiquidityUtilization,
			&stats.AvgSizeUSD,
			&stats.FalseSignalRate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet stats row: %w", err)
		}
		result = append(result, &stats)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet stats rows: %w", err)
	}

	if len(result) == 0 {
		return result, nil
	}

	ids := make([]string, len(result))
	for i, stats := range result {
		ids[i] = stats.WalletID
	}
	trades, err := s.tradesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, stats := range result {
		stats.Trades = trades[stats.WalletID]
	}
	return result, nil
}

// tradesFor loads trade snapshots for the given wallets, grouped by wallet
// id and ordered by trade index.
func (s *WalletStatsStore) tradesFor(ctx context.Context, walletIDs []string) (map[string][]domain.TradeSnapshot, error) {
	query := `
		SELECT wallet_id, pnl, entry_ts, exit_ts, duration_minutes
		FROM wallet_trades
		WHERE wallet_id = ANY($1)
		ORDER BY wallet_id ASC, trade_index ASC
	`

	rows, err := s.pool.Query(ctx, query, walletIDs)
	if err != nil {
		return nil, fmt.Errorf("get wallet trades: %w", err)
	}
	defer rows.Close()

	trades := make(map[string][]domain.TradeSnapshot)
	for rows.Next() {
		var walletID string
		var t domain.TradeSnapshot

		err := rows.Scan(
			&walletID,
			&t.PnL,
			&t.EntryTimestamp,
			&t.ExitTimestamp,
			&t.DurationMinutes,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet trade row: %w", err)
		}
		trades[walletID] = append(trades[walletID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet trade rows: %w", err)
	}
	return trades, nil
}
