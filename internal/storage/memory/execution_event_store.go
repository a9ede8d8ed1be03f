package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"whale-desk/internal/domain"
	"whale-desk/internal/storage"
)

// ExecutionEventStore is an in-memory implementation of storage.ExecutionEventStore.
type ExecutionEventStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ExecutionEvent // keyed by event_id
}

// NewExecutionEventStore creates a new in-memory execution event store.
func NewExecutionEventStore() *ExecutionEventStore {
	return &ExecutionEventStore{
		data: make(map[string]*domain.ExecutionEvent),
	}
}

// Insert appends an execution event. Returns ErrDuplicateKey if event_id exists.
func (s *ExecutionEventStore) Insert(_ context.Context, e *domain.ExecutionEvent) error {
	if e == nil || e.EventID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.EventID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[e.EventID] = cloneEvent(e)
	return nil
}

// GetByStatus retrieves events with the given status, ordered by timestamp ASC.
func (s *ExecutionEventStore) GetByStatus(_ context.Context, status string) ([]*domain.ExecutionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ExecutionEvent
	for _, e := range s.data {
		if e.Status == status {
			result = append(result, cloneEvent(e))
		}
	}
	sortEvents(result)

	return result, nil
}

// GetByTimeRange retrieves events within [start, end] inclusive, ordered by timestamp ASC.
func (s *ExecutionEventStore) GetByTimeRange(_ context.Context, start, end time.Time) ([]*domain.ExecutionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ExecutionEvent
	for _, e := range s.data {
		if !e.Timestamp.Before(start) && !e.Timestamp.After(end) {
			result = append(result, cloneEvent(e))
		}
	}
	sortEvents(result)

	return result, nil
}

func sortEvents(events []*domain.ExecutionEvent) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.Before(events[j].Timestamp)
		}
		return events[i].EventID < events[j].EventID
	})
}

func cloneEvent(e *domain.ExecutionEvent) *domain.ExecutionEvent {
	clone := *e
	clone.Payload = append([]byte(nil), e.Payload...)
	clone.Response = append([]byte(nil), e.Response...)
	return &clone
}

var _ storage.ExecutionEventStore = (*ExecutionEventStore)(nil)
