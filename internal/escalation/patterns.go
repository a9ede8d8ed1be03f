package escalation

import (
	"time"

	"whale-desk/internal/domain"
)

// Pattern is a known event shape with a fixed escalation decision.
// Matching events skip the expected-value computation entirely and cache
// the pattern's decision under the pattern's own TTL.
type Pattern struct {
	Name           string
	EventType      string
	MinSizeFrac    float64 // matched strictly greater-than
	MinCredibility float64 // matched strictly greater-than
	Decision       bool
	TTL            time.Duration
}

// Matches reports whether the event satisfies all pattern conditions.
func (p Pattern) Matches(event domain.EventContext) bool {
	return event.EventType == p.EventType &&
		event.SizeFrac > p.MinSizeFrac &&
		event.WalletCredibility > p.MinCredibility
}

// DefaultPatterns is the built-in pattern table. Large CEX deposits from
// credible wallets are routine exit flows, not signals worth an analysis
// call, so they are suppressed for an hour.
var DefaultPatterns = []Pattern{
	{
		Name:           "whale_cex_deposit",
		EventType:      domain.EventTypeDepositCEX,
		MinSizeFrac:    0.25,
		MinCredibility: 6.0,
		Decision:       false,
		TTL:            time.Hour,
	},
}
