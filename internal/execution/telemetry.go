package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"whale-desk/internal/domain"
	"whale-desk/internal/storage"
)

// Recorder appends order-submission telemetry to the execution event store.
type Recorder struct {
	store  storage.ExecutionEventStore
	logger *log.Logger
	now    func() time.Time
}

// NewRecorder creates a telemetry recorder.
func NewRecorder(store storage.ExecutionEventStore, logger *log.Logger) *Recorder {
	return &Recorder{store: store, logger: logger, now: time.Now}
}

// RecordSuccess appends a success event for the submitted payload.
func (r *Recorder) RecordSuccess(ctx context.Context, payload []byte, response json.RawMessage) {
	r.record(ctx, &domain.ExecutionEvent{
		EventID:   uuid.NewString(),
		Timestamp: r.now(),
		Status:    domain.ExecutionStatusSuccess,
		Payload:   payload,
		Response:  response,
	})
}

// RecordFailure appends a failure event for the submitted payload.
func (r *Recorder) RecordFailure(ctx context.Context, payload []byte, submitErr error) {
	r.record(ctx, &domain.ExecutionEvent{
		EventID:   uuid.NewString(),
		Timestamp: r.now(),
		Status:    domain.ExecutionStatusFailure,
		Payload:   payload,
		Error:     submitErr.Error(),
	})
}

// record inserts the event. Telemetry failures are logged, never returned:
// losing an audit row must not turn a filled order into a reported failure.
func (r *Recorder) record(ctx context.Context, event *domain.ExecutionEvent) {
	if err := r.store.Insert(ctx, event); err != nil && r.logger != nil {
		r.logger.Printf("execution telemetry: insert %s event: %v", event.Status, err)
	}
}

// Events retrieves recorded events by status, for reporting.
func (r *Recorder) Events(ctx context.Context, status string) ([]*domain.ExecutionEvent, error) {
	events, err := r.store.GetByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("get %s events: %w", status, err)
	}
	return events, nil
}
