package idhash

import (
	"testing"
	"time"
)

func TestComputeSubmissionID(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	id := ComputeSubmissionID("BTC-USDT-SWAP", "buy", at)
	if len(id) != 64 {
		t.Errorf("id length = %d, want 64", len(id))
	}

	// Deterministic: same inputs, same id.
	if again := ComputeSubmissionID("BTC-USDT-SWAP", "buy", at); again != id {
		t.Errorf("same inputs produced different ids: %s vs %s", id, again)
	}
}

func TestComputeSubmissionID_Uniqueness(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	base := ComputeSubmissionID("BTC-USDT-SWAP", "buy", at)

	variants := []string{
		ComputeSubmissionID("ETH-USDT-SWAP", "buy", at),
		ComputeSubmissionID("BTC-USDT-SWAP", "sell", at),
		ComputeSubmissionID("BTC-USDT-SWAP", "buy", at.Add(time.Nanosecond)),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base id", i)
		}
	}
}
