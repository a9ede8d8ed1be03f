package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"whale-desk/internal/budget"
	"whale-desk/internal/cache"
	"whale-desk/internal/domain"
	"whale-desk/internal/escalation"
)

// DefaultResponseTTL bounds how long an analysis response is reused.
const DefaultResponseTTL = 15 * time.Minute

// Skip reasons in Outcome.Reason.
const (
	ReasonNotEscalated    = "not_escalated"
	ReasonBudgetExhausted = "budget_exhausted"
)

// Outcome is the result of one analysis request.
type Outcome struct {
	Analyzed  bool
	Reason    string // skip reason, empty when analyzed
	Tier      string
	Response  string
	FromCache bool
}

// Service chains the escalation gate, the budget guard, the response cache
// and the vendor client for one event.
type Service struct {
	gate     *escalation.Gate
	guard    *budget.Guard
	client   Client
	cache    cache.Cache
	ttl      time.Duration
	critical float64 // size fraction above which the critical tier applies
}

// NewService creates an analysis service. critical should match the gate's
// criticality threshold so tier selection and rate-limit bypass agree.
func NewService(gate *escalation.Gate, guard *budget.Guard, client Client, c cache.Cache, critical float64) *Service {
	return &Service{
		gate:     gate,
		guard:    guard,
		client:   client,
		cache:    c,
		ttl:      DefaultResponseTTL,
		critical: critical,
	}
}

// Analyze decides whether the event deserves a costed call and performs it.
// Cached responses cost nothing and bypass the budget check.
func (s *Service) Analyze(ctx context.Context, event domain.EventContext, prompt string) (*Outcome, error) {
	escalate, err := s.gate.ShouldEscalate(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("escalation decision: %w", err)
	}
	if !escalate {
		return &Outcome{Reason: ReasonNotEscalated}, nil
	}

	tier := TierFor(event, s.critical)
	key := responseKey(tier.Model, prompt)

	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		return nil, fmt.Errorf("analysis cache get: %w", err)
	} else if ok {
		return &Outcome{Analyzed: true, Tier: tier.Name, Response: string(cached), FromCache: true}, nil
	}

	if !s.guard.CanCall(tier.CostUSD) {
		return &Outcome{Reason: ReasonBudgetExhausted, Tier: tier.Name}, nil
	}

	response, err := s.client.Analyze(ctx, tier.Model, prompt)
	if err != nil {
		return nil, fmt.Errorf("analysis call (%s): %w", tier.Model, err)
	}
	s.guard.TrackUsage(tier.CostUSD)

	if err := s.cache.Set(ctx, key, []byte(response), s.ttl); err != nil {
		return nil, fmt.Errorf("analysis cache set: %w", err)
	}
	return &Outcome{Analyzed: true, Tier: tier.Name, Response: response}, nil
}

// responseKey keys cached responses by model and prompt so a tier change
// never replays a cheaper model's answer.
func responseKey(model, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + prompt))
	return "analysis:" + hex.EncodeToString(sum[:])
}
