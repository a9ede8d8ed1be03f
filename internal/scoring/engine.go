// Package scoring turns wallet trade history into bounded credibility
// scores using a five-factor weighted model.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"whale-desk/internal/domain"
)

// DefaultWeights are the production factor weights. They sum to 1.0.
var DefaultWeights = domain.ScoreWeights{
	HistoricalPerformance: 0.35,
	TradingSophistication: 0.25,
	Consistency:           0.15,
	TimingQuality:         0.15,
	RiskManagement:        0.10,
}

// Engine calculates credibility scores for whale wallets.
type Engine struct {
	weights domain.ScoreWeights
}

// NewEngine creates a scoring engine. Weights must be non-negative and sum
// to 1.0; a violation is a programming error, not an input error.
func NewEngine(weights domain.ScoreWeights) (*Engine, error) {
	if weights.HistoricalPerformance < 0 || weights.TradingSophistication < 0 ||
		weights.Consistency < 0 || weights.TimingQuality < 0 || weights.RiskManagement < 0 {
		return nil, fmt.Errorf("scoring: negative weight")
	}
	if math.Abs(weights.Sum()-1.0) > 1e-9 {
		return nil, fmt.Errorf("scoring: weights sum to %v, want 1.0", weights.Sum())
	}
	return &Engine{weights: weights}, nil
}

// MustNewEngine is NewEngine for wiring paths where the weights are
// compile-time constants.
func MustNewEngine(weights domain.ScoreWeights) *Engine {
	e, err := NewEngine(weights)
	if err != nil {
		panic(err)
	}
	return e
}

// ScoreWallet computes all five components and the weighted credibility,
// rounded to 2 decimals.
func (e *Engine) ScoreWallet(stats *domain.WalletStats) *domain.ScoringResult {
	components := domain.ScoreComponents{
		HistoricalPerformance: scoreHistorical(stats.Trades),
		TradingSophistication: scoreSophistication(stats),
		Consistency:           scoreConsistency(stats.Trades),
		TimingQuality:         scoreTimingQuality(stats.Trades),
		RiskManagement:        scoreRiskManagement(stats),
	}
	credibility := round2(components.WeightedSum(e.weights))
	return &domain.ScoringResult{
		WalletID:    stats.WalletID,
		Credibility: credibility,
		Components:  components,
	}
}

// scoreHistorical scores realized expectancy: win_rate * mean(wins) minus
// loss_rate * mean(|losses|), scaled x2 and clamped to [0, 10].
// No trades is a neutral 5.0 prior; all-losing is 2.0, all-winning 9.0.
func scoreHistorical(trades []domain.TradeSnapshot) float64 {
	if len(trades) == 0 {
		return 5.0
	}
	var wins, losses []float64
	for _, t := range trades {
		if t.PnL > 0 {
			wins = append(wins, t.PnL)
		} else if t.PnL < 0 {
			losses = append(losses, math.Abs(t.PnL))
		}
	}
	if len(wins) == 0 {
		return 2.0
	}
	if len(losses) == 0 {
		return 9.0
	}
	winRate := float64(len(wins)) / float64(len(trades))
	expectancy := winRate*mean(wins) - (1-winRate)*mean(losses)
	return clamp(expectancy*2, 0.0, 10.0)
}

// scoreSophistication rewards liquidity usage and notional size, capped
// at 9.0 so no wallet maxes out on size alone.
func scoreSophistication(stats *domain.WalletStats) float64 {
	if len(stats.Trades) == 0 {
		return 5.0
	}
	diversity := math.Min(1.0, stats.LiquidityUtilization)
	sizeFactor := math.Min(1.0, stats.AvgSizeUSD/1_000_000)
	base := 3.5 + diversity*3 + sizeFactor*2.5
	return round2(math.Min(9.0, base))
}

// scoreConsistency penalizes volatile holding durations. Population
// stddev is used since the trade list is the full observed history.
func scoreConsistency(trades []domain.TradeSnapshot) float64 {
	if len(trades) < 2 {
		return 5.0
	}
	durations := make([]float64, len(trades))
	for i, t := range trades {
		durations[i] = t.DurationMinutes
	}
	volatility := populationStddev(durations)
	return math.Max(3.0, 8.0-math.Min(volatility/30, 3.0))
}

// scoreTimingQuality scores the interquartile spread of holding durations.
// Needs at least 4 trades for the quartiles to mean anything.
func scoreTimingQuality(trades []domain.TradeSnapshot) float64 {
	n := len(trades)
	if n < 4 {
		return 5.0
	}
	durations := make([]float64, n)
	for i, t := range trades {
		durations[i] = t.DurationMinutes
	}
	sort.Float64s(durations)
	q1 := durations[quartileIndex(0.25, n)]
	q3 := durations[quartileIndex(0.75, n)]
	spread := math.Max(1.0, q3-q1)
	return round2(math.Min(10.0, 7.5/(spread/30)))
}

// scoreRiskManagement penalizes false signals and idle liquidity,
// clamped to [2, 8]. Computed from stats even with no trade history.
func scoreRiskManagement(stats *domain.WalletStats) float64 {
	penaltyFalseSignals := stats.FalseSignalRate * 3
	penaltyLiquidity := math.Max(0.0, 1-stats.LiquidityUtilization) * 1.5
	score := 7.0 - (penaltyFalseSignals + penaltyLiquidity)
	return round2(clamp(score, 2.0, 8.0))
}

func quartileIndex(q float64, n int) int {
	idx := int(math.Round(q * float64(n-1)))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStddev uses the n denominator (full population, not a sample).
func populationStddev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
