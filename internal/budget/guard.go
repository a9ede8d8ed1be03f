// Package budget enforces the daily spend ceiling on costed analysis
// calls and raises a single alert as the ceiling approaches.
package budget

import (
	"fmt"
	"sync"
)

// DefaultAlertThreshold fires the alert at 80% of the daily limit.
const DefaultAlertThreshold = 0.8

// AlertSender receives the near-limit notification. Wired to the alert
// router in production, to a recording stub in tests.
type AlertSender interface {
	Send(level, message string) error
}

// AlertFunc adapts a function to AlertSender.
type AlertFunc func(level, message string) error

// Send calls f.
func (f AlertFunc) Send(level, message string) error { return f(level, message) }

// Guard tracks cumulative analysis spend against a daily limit.
// Concurrent callers are serialized on one mutex; Reset is invoked by an
// external scheduler once per accounting period.
type Guard struct {
	mu             sync.Mutex
	dailyLimit     float64
	currentSpend   float64
	alertThreshold float64
	alertSent      bool
	sender         AlertSender
}

// NewGuard creates a guard with the given daily limit in USD.
// A non-positive threshold falls back to the default. A nil sender
// disables alerting but not tracking.
func NewGuard(dailyLimit, alertThreshold float64, sender AlertSender) *Guard {
	if alertThreshold <= 0 || alertThreshold > 1 {
		alertThreshold = DefaultAlertThreshold
	}
	return &Guard{
		dailyLimit:     dailyLimit,
		alertThreshold: alertThreshold,
		sender:         sender,
	}
}

// CanCall reports whether an estimated cost still fits under the limit.
func (g *Guard) CanCall(estimatedCost float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentSpend+estimatedCost < g.dailyLimit
}

// TrackUsage adds an incurred cost. Crossing the alert threshold sends
// exactly one alert per accounting period.
func (g *Guard) TrackUsage(cost float64) {
	g.mu.Lock()
	g.currentSpend += cost
	shouldAlert := !g.alertSent && g.currentSpend >= g.dailyLimit*g.alertThreshold
	if shouldAlert {
		g.alertSent = true
	}
	spend, limit := g.currentSpend, g.dailyLimit
	g.mu.Unlock()

	if shouldAlert && g.sender != nil {
		// Alert failures are not retried; the flag stays set so the
		// period never double-alerts.
		_ = g.sender.Send("WARNING", fmt.Sprintf("analysis budget at %.2f/%.2f", spend, limit))
	}
}

// Spend returns the current cumulative spend.
func (g *Guard) Spend() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentSpend
}

// Reset clears the spend counter and the alert flag. Called by the
// external accounting-period scheduler, never internally.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.currentSpend = 0
	g.alertSent = false
}
