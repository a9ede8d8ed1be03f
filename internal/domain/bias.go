package domain

import "time"

// BiasResult is the aggregate directional signal for an asset/timeframe.
// Value is bounded to [-1, 1] (3 decimals), Confidence to [0, 1] (2 decimals).
// Components maps wallet id to the credibility that contributed to the value.
type BiasResult struct {
	Asset      string
	Timeframe  string
	Value      float64
	Confidence float64
	Components map[string]float64
	Timestamp  time.Time
}
