package domain

import "time"

// Execution statuses.
const (
	ExecutionStatusSuccess = "success"
	ExecutionStatusFailure = "failure"
)

// ExecutionEvent is the audit record of one order submission attempt.
// Events are appended, never mutated or deleted.
type ExecutionEvent struct {
	EventID   string
	Timestamp time.Time
	Status    string
	Payload   []byte // exchange request body as sent
	Response  []byte // exchange response, nil on failure
	Error     string // error text, empty on success
}
