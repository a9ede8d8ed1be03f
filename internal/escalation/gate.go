// Package escalation decides whether an on-chain event justifies the
// costed analysis call. Decisions are cached by tx hash and throttled by
// a sliding-window rate limit; a small pattern table short-circuits known
// event shapes.
package escalation

import (
	"context"
	"fmt"
	"math"
	"time"

	"whale-desk/internal/cache"
	"whale-desk/internal/domain"
)

// Config holds the gate thresholds (spec'd via the numeric config surface).
type Config struct {
	MinSizeFrac      float64       // basic filter: minimum size fraction
	MinCredibility   float64       // basic filter: minimum wallet credibility
	MinNotionalUSD   float64       // basic filter: minimum notional
	CriticalSizeFrac float64       // above this the rate limit is bypassed
	MinExpectedValue float64       // escalate when expected value exceeds this
	DecisionTTL      time.Duration // cache TTL for computed decisions
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MinSizeFrac:      0.10,
		MinCredibility:   3.0,
		MinNotionalUSD:   50_000,
		CriticalSizeFrac: 0.30,
		MinExpectedValue: 0.05,
		DecisionTTL:      300 * time.Second,
	}
}

// Gate makes escalation decisions. The cache and limiter are injected so
// concurrent gates (or tests) never share state accidentally.
type Gate struct {
	cfg      Config
	cache    cache.Cache
	limiter  *RateLimiter
	patterns []Pattern
}

// NewGate creates a gate with the default pattern table.
func NewGate(cfg Config, c cache.Cache, limiter *RateLimiter) *Gate {
	return &Gate{
		cfg:      cfg,
		cache:    c,
		limiter:  limiter,
		patterns: DefaultPatterns,
	}
}

// ShouldEscalate runs the decision chain for one event, short-circuiting
// in order: basic filters, cached decision, pattern table, criticality
// bypass, rate limit, expected value.
func (g *Gate) ShouldEscalate(ctx context.Context, event domain.EventContext) (bool, error) {
	if !g.passesBasicFilters(event) {
		return false, nil
	}

	if cached, ok, err := g.cachedDecision(ctx, event.TxHash); err != nil {
		return false, err
	} else if ok {
		return cached, nil
	}

	for _, p := range g.patterns {
		if p.Matches(event) {
			if err := g.cacheDecision(ctx, event.TxHash, p.Decision, p.TTL); err != nil {
				return false, err
			}
			return p.Decision, nil
		}
	}

	critical := event.SizeFrac > g.cfg.CriticalSizeFrac
	if g.limiter.Exceeds() && !critical {
		return false, nil
	}

	decision := g.expectedValue(event) > g.cfg.MinExpectedValue
	if err := g.cacheDecision(ctx, event.TxHash, decision, g.cfg.DecisionTTL); err != nil {
		return false, err
	}
	if decision {
		g.limiter.Record()
	}
	return decision, nil
}

func (g *Gate) passesBasicFilters(event domain.EventContext) bool {
	return event.SizeFrac >= g.cfg.MinSizeFrac &&
		event.WalletCredibility >= g.cfg.MinCredibility &&
		event.NotionalUSD >= g.cfg.MinNotionalUSD
}

// expectedValue estimates how much signal the event carries, capped at 1.
func (g *Gate) expectedValue(event domain.EventContext) float64 {
	return math.Min(1.0, event.SizeFrac*(event.WalletCredibility/10))
}

func (g *Gate) cachedDecision(ctx context.Context, txHash string) (decision, ok bool, err error) {
	value, ok, err := g.cache.Get(ctx, txHash)
	if err != nil {
		return false, false, fmt.Errorf("escalation cache get: %w", err)
	}
	if !ok {
		return false, false, nil
	}
	return len(value) == 1 && value[0] == '1', true, nil
}

func (g *Gate) cacheDecision(ctx context.Context, txHash string, decision bool, ttl time.Duration) error {
	value := []byte("0")
	if decision {
		value = []byte("1")
	}
	if err := g.cache.Set(ctx, txHash, value, ttl); err != nil {
		return fmt.Errorf("escalation cache set: %w", err)
	}
	return nil
}
