package ratelimit

import (
	"context"
	"time"
)

// Config defines the attempt limiter policy.
type Config struct {
	Threshold int           // Attempts allowed before lockout
	Window    time.Duration // Fixed lockout window anchored to the first attempt
}

func (c Config) validate() error {
	if c.Threshold < 1 {
		return ErrInvalidConfig
	}
	if c.Window <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Limiter counts failed verification attempts per key and denies further
// attempts once the threshold is reached within the window.
type Limiter struct {
	store  Store
	config Config
}

// New creates an attempt limiter over the given store.
func New(store Store, config Config) (*Limiter, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Limiter{store: store, config: config}, nil
}

// EnsureNotLimited returns a *TooManyAttemptsError when the key has reached
// the attempt threshold within the current window. It never consumes an
// attempt itself.
func (l *Limiter) EnsureNotLimited(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}

	count, ttl, err := l.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if count >= int64(l.config.Threshold) {
		return &TooManyAttemptsError{RetryAfter: ttl}
	}
	return nil
}

// Hit records a failed attempt for the key. The first hit anchors the fixed
// window; subsequent hits within the window only increment the counter.
func (l *Limiter) Hit(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}

	_, _, err := l.store.IncrementAndGet(ctx, key, l.config.Window)
	return err
}

// Clear resets the attempt counter for the key. Called on any successful
// verification.
func (l *Limiter) Clear(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	return l.store.Delete(ctx, key)
}

// Threshold exposes the configured attempt threshold.
func (l *Limiter) Threshold() int {
	return l.config.Threshold
}
