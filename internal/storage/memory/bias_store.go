package memory

import (
	"context"
	"sort"
	"sync"

	"whale-desk/internal/domain"
	"whale-desk/internal/storage"
)

// BiasStore is an in-memory implementation of storage.BiasStore.
type BiasStore struct {
	mu   sync.RWMutex
	rows []*domain.BiasResult // append order
}

// NewBiasStore creates a new in-memory bias store.
func NewBiasStore() *BiasStore {
	return &BiasStore{}
}

// Insert appends a new bias snapshot.
func (s *BiasStore) Insert(_ context.Context, b *domain.BiasResult) error {
	if b == nil || b.Asset == "" || b.Timeframe == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(s.rows, cloneBias(b))
	return nil
}

// Latest retrieves the most recent snapshot per (asset, timeframe).
func (s *BiasStore) Latest(_ context.Context, assets []string) ([]*domain.BiasResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		wanted[a] = struct{}{}
	}

	type key struct{ asset, timeframe string }
	latest := make(map[key]*domain.BiasResult)
	for _, b := range s.rows {
		if len(wanted) > 0 {
			if _, ok := wanted[b.Asset]; !ok {
				continue
			}
		}
		k := key{b.Asset, b.Timeframe}
		if cur, ok := latest[k]; !ok || b.Timestamp.After(cur.Timestamp) {
			latest[k] = b
		}
	}

	result := make([]*domain.BiasResult, 0, len(latest))
	for _, b := range latest {
		result = append(result, cloneBias(b))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Asset != result[j].Asset {
			return result[i].Asset < result[j].Asset
		}
		return result[i].Timeframe < result[j].Timeframe
	})

	return result, nil
}

func cloneBias(b *domain.BiasResult) *domain.BiasResult {
	clone := *b
	clone.Components = make(map[string]float64, len(b.Components))
	for k, v := range b.Components {
		clone.Components[k] = v
	}
	return &clone
}

var _ storage.BiasStore = (*BiasStore)(nil)
