package alerts

import (
	"context"
	"testing"

	"whale-desk/internal/queue"
)

func TestRouter_FansOutPerRoute(t *testing.T) {
	producer := queue.NewMemoryProducer()
	router := NewRouter(map[string][]Route{
		"critical": {
			{Channel: "pager", Target: "desk-oncall"},
			{Channel: "chat", Target: "#risk"},
		},
	}, producer)

	err := router.Send(context.Background(), "CRITICAL", "drawdown limit exceeded", map[string]any{"asset": "BTC"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	items := producer.Items()
	if len(items) != 2 {
		t.Fatalf("enqueued %d envelopes, want 2", len(items))
	}
	if items[0].Payload["level"] != "CRITICAL" {
		t.Errorf("level = %v, want CRITICAL", items[0].Payload["level"])
	}
	if items[1].Metadata["channel"] != "chat" {
		t.Errorf("second route channel = %v, want chat", items[1].Metadata["channel"])
	}
}

func TestRouter_UnroutedLevelDropped(t *testing.T) {
	producer := queue.NewMemoryProducer()
	router := NewRouter(map[string][]Route{}, producer)

	if err := router.Send(context.Background(), "WARNING", "exposure high", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(producer.Items()) != 0 {
		t.Error("unrouted level should enqueue nothing")
	}
}

func TestRouter_LevelCaseInsensitive(t *testing.T) {
	producer := queue.NewMemoryProducer()
	router := NewRouter(map[string][]Route{
		"warning": {{Channel: "chat", Target: "#desk"}},
	}, producer)

	if err := router.Send(context.Background(), "warning", "budget near limit", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(producer.Items()) != 1 {
		t.Error("lower-case level should match configured route")
	}
}
