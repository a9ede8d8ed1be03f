// Package cache provides the TTL key-value capability consumed by the
// escalation gate and the analysis client. Expiry is lazy: an entry is
// simply absent once its TTL has elapsed.
package cache

import (
	"context"
	"time"
)

// Cache is a TTL key-value store. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get returns the value for key, or ok=false if absent or expired.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key for the given TTL. A non-positive TTL
	// uses the backend's default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
