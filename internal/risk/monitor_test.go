package risk

import (
	"testing"

	"whale-desk/internal/domain"
)

func TestMonitor_AggregatesPositions(t *testing.T) {
	limits := testLimits()
	monitor := NewMonitor(limits)

	positions := []domain.PositionSnapshot{
		{Asset: "BTC-USDT-SWAP", Size: 0.2, Risk: 0.1, Drawdown: 2.0, CorrelationBucket: "majors"},
		{Asset: "ETH-USDT-SWAP", Size: -0.15, Risk: 0.08, Drawdown: 3.5, CorrelationBucket: "majors"},
		{Asset: "SOL-USDT-SWAP", Size: 0.05, Risk: 0.02, Drawdown: 1.0, CorrelationBucket: "alts"},
	}
	metrics := monitor.Metrics(positions)

	if metrics.OpenPositions != 3 {
		t.Errorf("OpenPositions = %d, want 3", metrics.OpenPositions)
	}
	if metrics.TotalExposure != 0.4 {
		t.Errorf("TotalExposure = %v, want 0.4", metrics.TotalExposure)
	}
	if metrics.RiskConsumed != 0.2 {
		t.Errorf("RiskConsumed = %v, want 0.2", metrics.RiskConsumed)
	}
	if metrics.CurrentDrawdown != 3.5 {
		t.Errorf("CurrentDrawdown = %v, want 3.5", metrics.CurrentDrawdown)
	}
	// Largest bucket is majors: |0.2| + |-0.15|.
	if metrics.CorrelationRisk != 0.35 {
		t.Errorf("CorrelationRisk = %v, want 0.35", metrics.CorrelationRisk)
	}
	if len(metrics.Alerts) != 0 {
		t.Errorf("unexpected alerts: %v", metrics.Alerts)
	}
}

func TestMonitor_NoPositions(t *testing.T) {
	metrics := NewMonitor(testLimits()).Metrics(nil)

	if metrics.OpenPositions != 0 || metrics.TotalExposure != 0 {
		t.Errorf("empty portfolio metrics = %+v, want zeros", metrics)
	}
	if len(metrics.Alerts) != 0 {
		t.Errorf("unexpected alerts: %v", metrics.Alerts)
	}
}

func TestMonitor_DrawdownBreachIsCritical(t *testing.T) {
	monitor := NewMonitor(testLimits())

	metrics := monitor.Metrics([]domain.PositionSnapshot{
		{Asset: "BTC-USDT-SWAP", Size: 0.1, Drawdown: 6.0},
	})

	if len(metrics.Alerts) != 1 {
		t.Fatalf("alerts = %v, want one", metrics.Alerts)
	}
	alert := metrics.Alerts[0]
	if alert.Severity != domain.SeverityCritical {
		t.Errorf("severity = %q, want CRITICAL", alert.Severity)
	}
	if alert.Message != "Daily drawdown limit exceeded" {
		t.Errorf("message = %q", alert.Message)
	}
	if !metrics.HasCritical() {
		t.Error("HasCritical() = false with a CRITICAL alert present")
	}
}

func TestMonitor_WarningAlerts(t *testing.T) {
	monitor := NewMonitor(testLimits())

	metrics := monitor.Metrics([]domain.PositionSnapshot{
		{Asset: "BTC-USDT-SWAP", Size: 0.6, CorrelationBucket: "majors"},
		{Asset: "ETH-USDT-SWAP", Size: 0.5, CorrelationBucket: "majors"},
	})

	wantMessages := map[string]string{
		"Correlation risk high": domain.SeverityWarning,
		"Exposure over 100%":    domain.SeverityWarning,
	}
	if len(metrics.Alerts) != len(wantMessages) {
		t.Fatalf("alerts = %v, want %d", metrics.Alerts, len(wantMessages))
	}
	for _, alert := range metrics.Alerts {
		severity, known := wantMessages[alert.Message]
		if !known {
			t.Errorf("unexpected alert %q", alert.Message)
			continue
		}
		if alert.Severity != severity {
			t.Errorf("alert %q severity = %q, want %q", alert.Message, alert.Severity, severity)
		}
	}
	if metrics.HasCritical() {
		t.Error("warnings alone must not be critical")
	}
}

func TestMonitor_RiskBudgetExhausted(t *testing.T) {
	monitor := NewMonitor(testLimits())

	metrics := monitor.Metrics([]domain.PositionSnapshot{
		{Asset: "BTC-USDT-SWAP", Size: 0.1, Risk: 0.6},
	})

	if len(metrics.Alerts) != 1 || metrics.Alerts[0].Message != "Risk budget exhausted" {
		t.Fatalf("alerts = %v, want Risk budget exhausted", metrics.Alerts)
	}
	if metrics.Alerts[0].Severity != domain.SeverityCritical {
		t.Errorf("severity = %q, want CRITICAL", metrics.Alerts[0].Severity)
	}
}
