package escalation

import (
	"context"
	"testing"
	"time"

	"whale-desk/internal/cache"
	"whale-desk/internal/domain"
)

func newGate(limit int) *Gate {
	return NewGate(DefaultConfig(), cache.NewMemory(time.Hour), NewRateLimiter(limit))
}

func TestShouldEscalate_BasicFilters(t *testing.T) {
	g := newGate(20)
	ctx := context.Background()

	cases := []struct {
		name  string
		event domain.EventContext
	}{
		{"small size", domain.EventContext{TxHash: "t1", SizeFrac: 0.05, WalletCredibility: 8, NotionalUSD: 100_000}},
		{"low credibility", domain.EventContext{TxHash: "t2", SizeFrac: 0.2, WalletCredibility: 2.9, NotionalUSD: 100_000}},
		{"small notional", domain.EventContext{TxHash: "t3", SizeFrac: 0.2, WalletCredibility: 8, NotionalUSD: 49_999}},
	}
	for _, tc := range cases {
		got, err := g.ShouldEscalate(ctx, tc.event)
		if err != nil {
			t.Fatalf("%s: ShouldEscalate failed: %v", tc.name, err)
		}
		if got {
			t.Errorf("%s: escalated despite failing basic filters", tc.name)
		}
	}

	// Filter rejections are not cached.
	if g.limiter.InWindow() != 0 {
		t.Error("filtered events must not consume rate limit")
	}
}

func TestShouldEscalate_ExpectedValue(t *testing.T) {
	g := newGate(20)
	ctx := context.Background()

	strong := domain.EventContext{
		TxHash: "strong", EventType: domain.EventTypeSwap,
		SizeFrac: 0.2, WalletCredibility: 8.0, NotionalUSD: 200_000,
	}
	got, err := g.ShouldEscalate(ctx, strong)
	if err != nil {
		t.Fatalf("ShouldEscalate failed: %v", err)
	}
	if !got {
		t.Error("expected escalation for EV 0.16 > 0.05")
	}
	if g.limiter.InWindow() != 1 {
		t.Errorf("accepted escalation should record a call, got %d", g.limiter.InWindow())
	}

	// EV = 0.10 * (3.0/10) = 0.03 <= 0.05
	weak := domain.EventContext{
		TxHash: "weak", EventType: domain.EventTypeSwap,
		SizeFrac: 0.10, WalletCredibility: 3.0, NotionalUSD: 60_000,
	}
	got, err = g.ShouldEscalate(ctx, weak)
	if err != nil {
		t.Fatalf("ShouldEscalate failed: %v", err)
	}
	if got {
		t.Error("expected no escalation for EV below threshold")
	}
	if g.limiter.InWindow() != 1 {
		t.Error("denied escalation must not record a call")
	}
}

func TestShouldEscalate_PatternDeniedAndCached(t *testing.T) {
	g := newGate(20)
	ctx := context.Background()

	event := domain.EventContext{
		TxHash:            "cexdep",
		EventType:         domain.EventTypeDepositCEX,
		SizeFrac:          0.3,
		WalletCredibility: 7.0,
		NotionalUSD:       500_000,
	}

	got, err := g.ShouldEscalate(ctx, event)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if got {
		t.Error("whale CEX deposit pattern should deny escalation")
	}

	// Repeat hits the cache: still denied, limiter untouched both times.
	got, err = g.ShouldEscalate(ctx, event)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if got {
		t.Error("cached pattern decision should deny escalation")
	}
	if g.limiter.InWindow() != 0 {
		t.Errorf("pattern path must never touch the rate limiter, got %d calls", g.limiter.InWindow())
	}
}

func TestShouldEscalate_CriticalBypassesRateLimit(t *testing.T) {
	g := newGate(1)
	ctx := context.Background()

	// Critical event (size > 0.30) accepted and records the only slot.
	critical := domain.EventContext{
		TxHash: "crit", EventType: domain.EventTypeSwap,
		SizeFrac: 0.35, WalletCredibility: 8.0, NotionalUSD: 400_000,
	}
	got, err := g.ShouldEscalate(ctx, critical)
	if err != nil {
		t.Fatalf("critical call failed: %v", err)
	}
	if !got {
		t.Error("critical event should escalate")
	}

	// Non-critical event is now rate limited.
	normal := domain.EventContext{
		TxHash: "norm", EventType: domain.EventTypeSwap,
		SizeFrac: 0.2, WalletCredibility: 8.0, NotionalUSD: 400_000,
	}
	got, err = g.ShouldEscalate(ctx, normal)
	if err != nil {
		t.Fatalf("normal call failed: %v", err)
	}
	if got {
		t.Error("non-critical event should be rate limited")
	}

	// A second critical event still bypasses the exhausted limit.
	critical2 := domain.EventContext{
		TxHash: "crit2", EventType: domain.EventTypeSwap,
		SizeFrac: 0.5, WalletCredibility: 9.0, NotionalUSD: 900_000,
	}
	got, err = g.ShouldEscalate(ctx, critical2)
	if err != nil {
		t.Fatalf("second critical call failed: %v", err)
	}
	if !got {
		t.Error("critical event should bypass the rate limit")
	}
}

func TestShouldEscalate_DecisionCacheHit(t *testing.T) {
	g := newGate(20)
	ctx := context.Background()

	event := domain.EventContext{
		TxHash: "repeat", EventType: domain.EventTypeSwap,
		SizeFrac: 0.2, WalletCredibility: 8.0, NotionalUSD: 200_000,
	}

	first, err := g.ShouldEscalate(ctx, event)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	second, err := g.ShouldEscalate(ctx, event)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if first != second {
		t.Errorf("cache should replay decision: first=%v second=%v", first, second)
	}
	if g.limiter.InWindow() != 1 {
		t.Errorf("cache hit must not record another call, got %d", g.limiter.InWindow())
	}
}
