package domain

// Alert severities.
const (
	SeverityCritical = "CRITICAL"
	SeverityWarning  = "WARNING"
)

// PositionSnapshot describes one open position. Supplied by the caller per
// risk check; the core does not own position state.
type PositionSnapshot struct {
	Asset             string
	Side              string
	Size              float64 // signed exposure as fraction of equity
	Risk              float64 // risk budget consumed by the position
	PnL               float64
	Drawdown          float64 // peak-to-trough loss percentage
	CorrelationBucket string
}

// RiskAlert is one alert raised by the risk monitor.
type RiskAlert struct {
	Severity string
	Message  string
}

// RiskMetrics aggregates currently open positions. Computed fresh per call.
type RiskMetrics struct {
	OpenPositions   int
	TotalExposure   float64
	CurrentDrawdown float64
	RiskConsumed    float64
	CorrelationRisk float64 // largest single correlation-bucket exposure
	Alerts          []RiskAlert
}

// HasCritical reports whether any alert is CRITICAL.
func (m *RiskMetrics) HasCritical() bool {
	for _, a := range m.Alerts {
		if a.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
