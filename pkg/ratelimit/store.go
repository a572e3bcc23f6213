package ratelimit

import (
	"context"
	"time"
)

// Store defines the interface for attempt counter storage backends.
type Store interface {
	// IncrementAndGet atomically increments the counter for the given key
	// and returns the new value along with the remaining window TTL.
	// The window is anchored when the key is first created.
	IncrementAndGet(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)

	// Get returns the current counter value and remaining TTL for the key.
	// An absent or expired key reads as zero.
	Get(ctx context.Context, key string) (count int64, ttl time.Duration, err error)

	// Delete removes the given key from the store.
	Delete(ctx context.Context, key string) error
}
