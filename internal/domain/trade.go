package domain

import "time"

// ProposedTrade is a trade under policy review.
type ProposedTrade struct {
	TradingMode       string
	Asset             string
	Side              string
	SizePercent       float64 // position size as fraction of equity
	Leverage          float64
	RRRatio           float64 // reward:risk ratio
	WalletCredibility float64
}

// PortfolioState is the portfolio context a proposed trade is judged
// against. Constructed by the caller per submission.
type PortfolioState struct {
	OpenPositions   int
	DailyTrades     int
	TotalRisk       float64
	CorrelationRisk float64
	DrawdownDaily   float64
	DrawdownWeekly  float64
	DrawdownMonthly float64
}

// TradeSignal is a candidate order produced upstream and consumed once by
// the order submitter. SignalTime is when the signal was generated; it
// seeds the deterministic submission id so replays map to the same id.
type TradeSignal struct {
	TradingMode       string
	Asset             string
	Side              string
	SizePercent       float64
	Leverage          float64
	RRRatio           float64
	WalletCredibility float64
	Quantity          float64
	SignalTime        time.Time
}

// Proposed builds the policy-engine view of the signal.
func (s TradeSignal) Proposed() ProposedTrade {
	return ProposedTrade{
		TradingMode:       s.TradingMode,
		Asset:             s.Asset,
		Side:              s.Side,
		SizePercent:       s.SizePercent,
		Leverage:          s.Leverage,
		RRRatio:           s.RRRatio,
		WalletCredibility: s.WalletCredibility,
	}
}
