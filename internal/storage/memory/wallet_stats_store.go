package memory

import (
	"context"
	"sort"
	"sync"

	"whale-desk/internal/domain"
	"whale-desk/internal/storage"
)

// WalletStatsStore is an in-memory implementation of storage.WalletStatsStore.
type WalletStatsStore struct {
	mu   sync.RWMutex
	data map[string]*domain.WalletStats // keyed by wallet_id
}

// NewWalletStatsStore creates a new in-memory wallet stats store.
func NewWalletStatsStore() *WalletStatsStore {
	return &WalletStatsStore{
		data: make(map[string]*domain.WalletStats),
	}
}

// Insert adds stats for a wallet. Returns ErrDuplicateKey if wallet_id exists.
func (s *WalletStatsStore) Insert(_ context.Context, stats *domain.WalletStats) error {
	if stats == nil || stats.WalletID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[stats.WalletID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[stats.WalletID] = cloneStats(stats)
	return nil
}

// GetByID retrieves stats by wallet id. Returns ErrNotFound if not exists.
func (s *WalletStatsStore) GetByID(_ context.Context, walletID string) (*domain.WalletStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, exists := s.data[walletID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return cloneStats(stats), nil
}

// GetAll retrieves stats for every known wallet, ordered by wallet id ASC.
func (s *WalletStatsStore) GetAll(_ context.Context) ([]*domain.WalletStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.WalletStats, 0, len(s.data))
	for _, stats := range s.data {
		result = append(result, cloneStats(stats))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].WalletID < result[j].WalletID
	})

	return result, nil
}

func cloneStats(stats *domain.WalletStats) *domain.WalletStats {
	clone := *stats
	clone.Trades = make([]domain.TradeSnapshot, len(stats.Trades))
	copy(clone.Trades, stats.Trades)
	return &clone
}

var _ storage.WalletStatsStore = (*WalletStatsStore)(nil)
