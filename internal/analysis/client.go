// Package analysis runs the costed deep-analysis call for events that
// cleared the escalation gate, with tiered model selection, response
// caching, and spend accounting through the budget guard.
package analysis

import (
	"context"
	"sync"

	"whale-desk/internal/domain"
)

// Tier names an analysis model and its per-call cost.
type Tier struct {
	Name    string
	Model   string
	CostUSD float64
}

// Model tiers, most expensive first. Critical events justify the deep
// model; everything else gets the cheaper tiers.
var (
	TierCritical = Tier{Name: "critical", Model: "analyst-deep-v2", CostUSD: 0.50}
	TierStandard = Tier{Name: "standard", Model: "analyst-std-v2", CostUSD: 0.10}
	TierSimple   = Tier{Name: "simple", Model: "analyst-lite-v1", CostUSD: 0.02}
)

// TierFor selects the model tier for an event. Size drives criticality the
// same way it drives the gate's rate-limit bypass; high-credibility wallets
// get the standard model, the rest the cheapest one.
func TierFor(event domain.EventContext, criticalSizeFrac float64) Tier {
	switch {
	case event.SizeFrac > criticalSizeFrac:
		return TierCritical
	case event.WalletCredibility >= 6.0:
		return TierStandard
	default:
		return TierSimple
	}
}

// Client performs one analysis call against the named model.
type Client interface {
	Analyze(ctx context.Context, model, prompt string) (string, error)
}

// MemoryClient returns canned responses and records calls, standing in for
// the vendor client in tests and dry runs.
type MemoryClient struct {
	mu       sync.Mutex
	calls    []string // "model: prompt"
	Response string
	Err      error
}

// NewMemoryClient creates a client answering every call with response.
func NewMemoryClient(response string) *MemoryClient {
	return &MemoryClient{Response: response}
}

// Analyze records the call and returns the canned response.
func (c *MemoryClient) Analyze(_ context.Context, model, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, model+": "+prompt)
	if c.Err != nil {
		return "", c.Err
	}
	return c.Response, nil
}

// Calls returns a snapshot of recorded calls.
func (c *MemoryClient) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

var _ Client = (*MemoryClient)(nil)
