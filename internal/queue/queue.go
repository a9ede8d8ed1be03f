// Package queue defines the outbound message capability. Delivery
// semantics (at-least-once, ordering) belong to the backing broker; the
// core only needs the enqueue contract.
package queue

import (
	"context"
	"sync"
)

// Envelope is the opaque container handed to queue implementations.
type Envelope struct {
	Payload  map[string]any
	Metadata map[string]any
}

// Producer sends envelopes to an at-least-once delivery abstraction.
type Producer interface {
	Enqueue(ctx context.Context, envelope Envelope) error
}

// MemoryProducer stores envelopes in memory for wiring without a broker
// and for assertions in tests.
type MemoryProducer struct {
	mu    sync.Mutex
	items []Envelope
}

// NewMemoryProducer creates an empty in-memory producer.
func NewMemoryProducer() *MemoryProducer {
	return &MemoryProducer{}
}

// Enqueue appends the envelope.
func (p *MemoryProducer) Enqueue(_ context.Context, envelope Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, envelope)
	return nil
}

// Items returns a snapshot of enqueued envelopes.
func (p *MemoryProducer) Items() []Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Envelope(nil), p.items...)
}

// Drain returns all envelopes and clears the producer.
func (p *MemoryProducer) Drain() []Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := p.items
	p.items = nil
	return items
}

var _ Producer = (*MemoryProducer)(nil)
