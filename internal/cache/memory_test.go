package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_SetGet(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || string(value) != "v" {
		t.Errorf("Get = (%q, %v), want (\"v\", true)", value, ok)
	}
}

func TestMemory_MissingKey(t *testing.T) {
	c := NewMemory(time.Minute)

	_, ok, err := c.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected ok=false for missing key")
	}
}

func TestMemory_LazyExpiry(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), 300*time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	now = now.Add(299 * time.Second)
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Error("entry expired early")
	}

	now = now.Add(2 * time.Second)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("entry should be expired after TTL")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry not dropped on read, size = %d", c.Size())
	}
}

func TestMemory_SetCopiesValue(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'

	value, _, _ := c.Get(ctx, "k")
	if string(value) != "abc" {
		t.Errorf("cached value mutated by caller: %q", value)
	}
}
