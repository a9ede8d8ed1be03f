package risk

import (
	"math"

	"whale-desk/internal/domain"
)

// Monitor aggregates open positions into portfolio risk metrics and raises
// alerts against the configured limits. It is stateless; positions are
// supplied per call.
type Monitor struct {
	limits Limits
}

// NewMonitor creates a monitor over the given limits.
func NewMonitor(limits Limits) *Monitor {
	return &Monitor{limits: limits}
}

// Metrics computes the portfolio aggregates for the open positions and
// attaches any limit-breach alerts.
func (m *Monitor) Metrics(positions []domain.PositionSnapshot) *domain.RiskMetrics {
	metrics := &domain.RiskMetrics{OpenPositions: len(positions)}

	buckets := make(map[string]float64)
	for _, p := range positions {
		metrics.TotalExposure += math.Abs(p.Size)
		metrics.RiskConsumed += p.Risk
		if p.Drawdown > metrics.CurrentDrawdown {
			metrics.CurrentDrawdown = p.Drawdown
		}
		if p.CorrelationBucket != "" {
			buckets[p.CorrelationBucket] += math.Abs(p.Size)
		}
	}
	for _, exposure := range buckets {
		if exposure > metrics.CorrelationRisk {
			metrics.CorrelationRisk = exposure
		}
	}

	metrics.TotalExposure = round4(metrics.TotalExposure)
	metrics.RiskConsumed = round4(metrics.RiskConsumed)
	metrics.CurrentDrawdown = round4(metrics.CurrentDrawdown)
	metrics.CorrelationRisk = round4(metrics.CorrelationRisk)

	metrics.Alerts = m.alerts(metrics)
	return metrics
}

func (m *Monitor) alerts(metrics *domain.RiskMetrics) []domain.RiskAlert {
	var alerts []domain.RiskAlert
	if metrics.CurrentDrawdown > m.limits.Drawdown.Daily {
		alerts = append(alerts, domain.RiskAlert{
			Severity: domain.SeverityCritical,
			Message:  "Daily drawdown limit exceeded",
		})
	}
	if metrics.RiskConsumed > m.limits.Portfolio.MaxTotalRisk {
		alerts = append(alerts, domain.RiskAlert{
			Severity: domain.SeverityCritical,
			Message:  "Risk budget exhausted",
		})
	}
	if metrics.CorrelationRisk > m.limits.Portfolio.MaxCorrelationRisk {
		alerts = append(alerts, domain.RiskAlert{
			Severity: domain.SeverityWarning,
			Message:  "Correlation risk high",
		})
	}
	if metrics.TotalExposure > 1.0 {
		alerts = append(alerts, domain.RiskAlert{
			Severity: domain.SeverityWarning,
			Message:  "Exposure over 100%",
		})
	}
	return alerts
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
