package memory

import (
	"context"
	"errors"
	"testing"

	"whale-desk/internal/domain"
	"whale-desk/internal/storage"
)

func TestWalletStatsStore_InsertAndGet(t *testing.T) {
	store := NewWalletStatsStore()
	ctx := context.Background()

	stats := &domain.WalletStats{
		WalletID: "0xabc",
		Trades: []domain.TradeSnapshot{
			{PnL: 1.5, DurationMinutes: 30},
		},
		LiquidityUtilization: 0.6,
		AvgSizeUSD:           120_000,
	}

	if err := store.Insert(ctx, stats); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Trades) != 1 || got.Trades[0].PnL != 1.5 {
		t.Errorf("trades mismatch: %+v", got.Trades)
	}
}

func TestWalletStatsStore_DuplicateKey(t *testing.T) {
	store := NewWalletStatsStore()
	ctx := context.Background()

	stats := &domain.WalletStats{WalletID: "0xabc"}
	if err := store.Insert(ctx, stats); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	err := store.Insert(ctx, stats)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestWalletStatsStore_NotFound(t *testing.T) {
	store := NewWalletStatsStore()

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWalletStatsStore_GetAllOrdered(t *testing.T) {
	store := NewWalletStatsStore()
	ctx := context.Background()

	for _, id := range []string{"0xccc", "0xaaa", "0xbbb"} {
		if err := store.Insert(ctx, &domain.WalletStats{WalletID: id}); err != nil {
			t.Fatalf("Insert %s failed: %v", id, err)
		}
	}

	got, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	want := []string{"0xaaa", "0xbbb", "0xccc"}
	for i, stats := range got {
		if stats.WalletID != want[i] {
			t.Errorf("GetAll[%d] = %s, want %s", i, stats.WalletID, want[i])
		}
	}
}
