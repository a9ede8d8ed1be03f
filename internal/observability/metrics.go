// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Escalation metrics
	EscalationDecisions *prometheus.CounterVec
	AnalysisCalls       *prometheus.CounterVec
	AnalysisSpendUSD    prometheus.Gauge

	// Scoring metrics
	WalletsScored      prometheus.Counter
	BiasSnapshots      prometheus.Counter
	CredibilityUpdates prometheus.Counter

	// Risk metrics
	PolicyRejections *prometheus.CounterVec
	RiskAlerts       *prometheus.CounterVec
	KillSwitchActive prometheus.Gauge

	// Execution metrics
	OrdersSubmitted   *prometheus.CounterVec
	ExchangeLatency   prometheus.Histogram
	SubmissionOutcome *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulOrder prometheus.Gauge
	UptimeSeconds       prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "whale_desk"
	}

	return &Metrics{
		// Escalation metrics
		EscalationDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "escalation",
			Name:      "decisions_total",
			Help:      "Total number of escalation decisions by outcome",
		}, []string{"decision"}),
		AnalysisCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "calls_total",
			Help:      "Total number of analysis calls by model tier",
		}, []string{"tier"}),
		AnalysisSpendUSD: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "spend_usd",
			Help:      "Analysis spend in the current budget period, USD",
		}),

		// Scoring metrics
		WalletsScored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "wallets_scored_total",
			Help:      "Total number of wallet credibility computations",
		}),
		BiasSnapshots: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "bias_snapshots_total",
			Help:      "Total number of bias snapshots published",
		}),
		CredibilityUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "credibility_updates_total",
			Help:      "Total number of EWMA credibility updates applied",
		}),

		// Risk metrics
		PolicyRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "risk",
			Name:      "policy_rejections_total",
			Help:      "Total number of policy rejections by failing check",
		}, []string{"check"}),
		RiskAlerts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "risk",
			Name:      "alerts_total",
			Help:      "Total number of risk alerts by severity",
		}, []string{"severity"}),
		KillSwitchActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "risk",
			Name:      "kill_switch_active",
			Help:      "Whether the kill switch is active (1) or not (0)",
		}),

		// Execution metrics
		OrdersSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "orders_submitted_total",
			Help:      "Total number of exchange orders by status",
		}, []string{"status"}),
		ExchangeLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "exchange_latency_seconds",
			Help:      "Exchange order call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SubmissionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "submission_outcomes_total",
			Help:      "Total number of submission attempts by outcome reason",
		}, []string{"reason"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulOrder: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_order_timestamp",
			Help:      "Unix timestamp of the last successful order submission",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordEscalation increments the escalation decision counter.
func RecordEscalation(escalated bool) {
	decision := "skipped"
	if escalated {
		decision = "escalated"
	}
	DefaultMetrics.EscalationDecisions.WithLabelValues(decision).Inc()
}

// RecordOrder increments the order counter for the given status.
func RecordOrder(status string) {
	DefaultMetrics.OrdersSubmitted.WithLabelValues(status).Inc()
}

// RecordPolicyRejection increments the rejection counter for the failing check.
func RecordPolicyRejection(check string) {
	DefaultMetrics.PolicyRejections.WithLabelValues(check).Inc()
}

// SetKillSwitch reflects the current kill-switch state.
func SetKillSwitch(active bool) {
	if active {
		DefaultMetrics.KillSwitchActive.Set(1)
	} else {
		DefaultMetrics.KillSwitchActive.Set(0)
	}
}
