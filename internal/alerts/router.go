// Package alerts builds level-routed alert payloads and hands them to the
// queue producer. Actual delivery (chat, pager, email) happens downstream
// of the queue and is out of scope here.
package alerts

import (
	"context"
	"fmt"
	"strings"

	"whale-desk/internal/queue"
)

// Route is one delivery target for a severity level.
type Route struct {
	Channel string `json:"channel"`
	Target  string `json:"target"`
}

// Router fans an alert out to every route configured for its level.
type Router struct {
	routes   map[string][]Route // keyed by upper-cased level
	producer queue.Producer
}

// NewRouter creates a router over the given routing table.
func NewRouter(routes map[string][]Route, producer queue.Producer) *Router {
	normalized := make(map[string][]Route, len(routes))
	for level, targets := range routes {
		normalized[strings.ToUpper(level)] = targets
	}
	return &Router{routes: normalized, producer: producer}
}

// Send enqueues one envelope per configured route for the level. Levels
// without routes are dropped silently; alerting is best-effort by design
// and must never block the pipeline.
func (r *Router) Send(ctx context.Context, level, message string, fields map[string]any) error {
	level = strings.ToUpper(level)
	payload := map[string]any{
		"level":   level,
		"message": message,
		"context": fields,
	}
	for _, route := range r.routes[level] {
		envelope := queue.Envelope{
			Payload: payload,
			Metadata: map[string]any{
				"channel": route.Channel,
				"target":  route.Target,
			},
		}
		if err := r.producer.Enqueue(ctx, envelope); err != nil {
			return fmt.Errorf("enqueue %s alert: %w", level, err)
		}
	}
	return nil
}
