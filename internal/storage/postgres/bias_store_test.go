package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whale-desk/internal/domain"
	"whale-desk/internal/storage"
)

func TestBiasStore_InsertAndLatest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBiasStore(pool)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	older := &domain.BiasResult{
		Asset:      "BTC",
		Timeframe:  "1h",
		Value:      0.2,
		Confidence: 0.5,
		Components: map[string]float64{"wallet-a": 6.0},
		Timestamp:  base,
	}
	newer := &domain.BiasResult{
		Asset:      "BTC",
		Timeframe:  "1h",
		Value:      0.35,
		Confidence: 0.8,
		Components: map[string]float64{"wallet-a": 6.0, "wallet-b": 7.5},
		Timestamp:  base.Add(time.Hour),
	}

	require.NoError(t, store.Insert(ctx, older))
	require.NoError(t, store.Insert(ctx, newer))

	latest, err := store.Latest(ctx, nil)
	require.NoError(t, err)
	require.Len(t, latest, 1)

	assert.Equal(t, "BTC", latest[0].Asset)
	assert.Equal(t, "1h", latest[0].Timeframe)
	assert.Equal(t, 0.35, latest[0].Value)
	assert.Equal(t, 0.8, latest[0].Confidence)
	assert.Equal(t, newer.Components, latest[0].Components)
	assert.True(t, latest[0].Timestamp.Equal(newer.Timestamp))
}

func TestBiasStore_LatestFiltersAndOrders(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBiasStore(pool)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, b := range []*domain.BiasResult{
		{Asset: "ETH", Timeframe: "4h", Value: 0.1, Confidence: 0.4, Components: map[string]float64{}, Timestamp: at},
		{Asset: "BTC", Timeframe: "4h", Value: 0.2, Confidence: 0.4, Components: map[string]float64{}, Timestamp: at},
		{Asset: "BTC", Timeframe: "1h", Value: 0.3, Confidence: 0.4, Components: map[string]float64{}, Timestamp: at},
		{Asset: "SOL", Timeframe: "1h", Value: -0.1, Confidence: 0.4, Components: map[string]float64{}, Timestamp: at},
	} {
		require.NoError(t, store.Insert(ctx, b))
	}

	latest, err := store.Latest(ctx, []string{"BTC", "ETH"})
	require.NoError(t, err)
	require.Len(t, latest, 3)

	// Ordered by asset ASC, timeframe ASC; SOL filtered out.
	assert.Equal(t, "BTC", latest[0].Asset)
	assert.Equal(t, "1h", latest[0].Timeframe)
	assert.Equal(t, "BTC", latest[1].Asset)
	assert.Equal(t, "4h", latest[1].Timeframe)
	assert.Equal(t, "ETH", latest[2].Asset)
}

func TestBiasStore_InsertInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBiasStore(pool)
	ctx := context.Background()

	err := store.Insert(ctx, &domain.BiasResult{Asset: "", Timeframe: "1h"})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
