package domain

// TradeSnapshot represents one closed trade used for wallet scoring.
// Snapshots are read-only inputs constructed from stored trade history.
type TradeSnapshot struct {
	PnL             float64 // realized profit/loss, normalized units
	EntryTimestamp  float64 // unix seconds
	ExitTimestamp   float64 // unix seconds
	DurationMinutes float64
}

// WalletStats aggregates the observed behavior of one wallet.
// Built per scoring request; the core never persists it directly.
type WalletStats struct {
	WalletID             string
	Trades               []TradeSnapshot
	RecentEvents         int
	LiquidityUtilization float64 // 0..1, fraction of available liquidity used
	AvgSizeUSD           float64 // average notional per trade
	FalseSignalRate      float64 // 0..1
}

// ScoreComponents holds the five weighted sub-scores, each in [0, 10].
type ScoreComponents struct {
	HistoricalPerformance float64
	TradingSophistication float64
	Consistency           float64
	TimingQuality         float64
	RiskManagement        float64
}

// WeightedSum combines components using the given weights.
func (c ScoreComponents) WeightedSum(w ScoreWeights) float64 {
	return c.HistoricalPerformance*w.HistoricalPerformance +
		c.TradingSophistication*w.TradingSophistication +
		c.Consistency*w.Consistency +
		c.TimingQuality*w.TimingQuality +
		c.RiskManagement*w.RiskManagement
}

// ScoreWeights maps each sub-score to its weight. Weights must sum to 1.0.
type ScoreWeights struct {
	HistoricalPerformance float64
	TradingSophistication float64
	Consistency           float64
	TimingQuality         float64
	RiskManagement        float64
}

// Sum returns the total of all weights.
func (w ScoreWeights) Sum() float64 {
	return w.HistoricalPerformance + w.TradingSophistication +
		w.Consistency + w.TimingQuality + w.RiskManagement
}

// ScoringResult is the final credibility for one wallet.
// Credibility is bounded to [0, 10] and rounded to 2 decimals.
type ScoringResult struct {
	WalletID    string
	Credibility float64
	Components  ScoreComponents
}
