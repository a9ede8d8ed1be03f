package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"whale-desk/internal/domain"
	"whale-desk/internal/storage"
)

// ExecutionEventStore implements storage.ExecutionEventStore using ClickHouse.
type ExecutionEventStore struct {
	conn *Conn
}

// NewExecutionEventStore creates a new ExecutionEventStore.
func NewExecutionEventStore(conn *Conn) *ExecutionEventStore {
	return &ExecutionEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ExecutionEventStore = (*ExecutionEventStore)(nil)

// Insert appends an execution event. Returns ErrDuplicateKey if event_id exists.
func (s *ExecutionEventStore) Insert(ctx context.Context, e *domain.ExecutionEvent) error {
	if e == nil || e.EventID == "" {
		return storage.ErrInvalidInput
	}

	// MergeTree doesn't enforce uniqueness; check explicitly to keep the
	// append-only contract.
	exists, err := s.exists(ctx, e.EventID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO execution_events (
			event_id, timestamp, status, payload, response, error
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	err = s.conn.Exec(ctx, query,
		e.EventID,
		e.Timestamp,
		e.Status,
		string(e.Payload),
		string(e.Response),
		e.Error,
	)
	if err != nil {
		return fmt.Errorf("insert execution event: %w", err)
	}
	return nil
}

// GetByStatus retrieves events with the given status, ordered by timestamp ASC.
func (s *ExecutionEventStore) GetByStatus(ctx context.Context, status string) ([]*domain.ExecutionEvent, error) {
	query := `
		SELECT event_id, timestamp, status, payload, response, error
		FROM execution_events
		WHERE status = ?
		ORDER BY timestamp ASC, event_id ASC
	`

	rows, err := s.conn.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("get events by status: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetByTimeRange retrieves events within [start, end] inclusive, ordered by timestamp ASC.
func (s *ExecutionEventStore) GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.ExecutionEvent, error) {
	query := `
		SELECT event_id, timestamp, status, payload, response, error
		FROM execution_events
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC, event_id ASC
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get events by time range: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *ExecutionEventStore) exists(ctx context.Context, eventID string) (bool, error) {
	query := `SELECT count() FROM execution_events WHERE event_id = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, eventID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanEvents(rows driver.Rows) ([]*domain.ExecutionEvent, error) {
	var events []*domain.ExecutionEvent
	for rows.Next() {
		var e domain.ExecutionEvent
		var payload, response string

		err := rows.Scan(
			&e.EventID,
			&e.Timestamp,
			&e.Status,
			&payload,
			&response,
			&e.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		e.Payload = []byte(payload)
		if response != "" {
			e.Response = []byte(response)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	return events, nil
}
