// Package bias combines per-wallet credibility scores into a directional
// bias signal for an asset/timeframe.
package bias

import (
	"context"
	"fmt"
	"math"
	"time"

	"whale-desk/internal/domain"
	"whale-desk/internal/scoring"
	"whale-desk/internal/storage"
)

// Aggregator computes bias results from wallet stats.
type Aggregator struct {
	engine *scoring.Engine
	now    func() time.Time
}

// NewAggregator creates a bias aggregator on top of a scoring engine.
func NewAggregator(engine *scoring.Engine) *Aggregator {
	return &Aggregator{
		engine: engine,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Calculate scores each wallet and blends the scores into one bias value.
//
// Each wallet's vote is (credibility-5)/5 in [-1, 1], weighted by
// max(0.1, credibility/10) so low-credibility wallets never dominate but
// are never silenced entirely. Confidence is total weight over wallet
// count, capped at 1. An empty wallet set yields a zero-value, zero-
// confidence result with no components.
func (a *Aggregator) Calculate(asset, timeframe string, wallets []*domain.WalletStats) *domain.BiasResult {
	result := &domain.BiasResult{
		Asset:      asset,
		Timeframe:  timeframe,
		Components: map[string]float64{},
		Timestamp:  a.now(),
	}
	if len(wallets) == 0 {
		return result
	}

	totalWeight := 0.0
	weightedBias := 0.0
	for _, stats := range wallets {
		score := a.engine.ScoreWallet(stats)
		weight := math.Max(0.1, score.Credibility/10)
		totalWeight += weight
		weightedBias += (score.Credibility - 5) / 5 * weight
		result.Components[score.WalletID] = score.Credibility
	}

	result.Value = round3(weightedBias / totalWeight)
	result.Confidence = round2(math.Min(1.0, totalWeight/float64(len(wallets))))
	return result
}

// Publish computes and stores a bias result in one step.
func (a *Aggregator) Publish(ctx context.Context, store storage.BiasStore, asset, timeframe string, wallets []*domain.WalletStats) (*domain.BiasResult, error) {
	result := a.Calculate(asset, timeframe, wallets)
	if err := store.Insert(ctx, result); err != nil {
		return nil, fmt.Errorf("store bias %s/%s: %w", asset, timeframe, err)
	}
	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
