package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplane/authcore/pkg/ratelimit"
)

func newTestLimiter(t *testing.T, cfg ratelimit.Config) *ratelimit.Limiter {
	t.Helper()
	store := ratelimit.NewMemoryStore(ratelimit.WithCleanupInterval(0))
	t.Cleanup(func() { _ = store.Close() })
	limiter, err := ratelimit.New(store, cfg)
	require.NoError(t, err)
	return limiter
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil store", func(t *testing.T) {
		t.Parallel()
		_, err := ratelimit.New(nil, ratelimit.Config{Threshold: 5, Window: time.Minute})
		assert.ErrorIs(t, err, ratelimit.ErrStoreRequired)
	})

	t.Run("invalid threshold", func(t *testing.T) {
		t.Parallel()
		store := ratelimit.NewMemoryStore(ratelimit.WithCleanupInterval(0))
		t.Cleanup(func() { _ = store.Close() })
		_, err := ratelimit.New(store, ratelimit.Config{Threshold: 0, Window: time.Minute})
		assert.ErrorIs(t, err, ratelimit.ErrInvalidConfig)
	})

	t.Run("invalid window", func(t *testing.T) {
		t.Parallel()
		store := ratelimit.NewMemoryStore(ratelimit.WithCleanupInterval(0))
		t.Cleanup(func() { _ = store.Close() })
		_, err := ratelimit.New(store, ratelimit.Config{Threshold: 5})
		assert.ErrorIs(t, err, ratelimit.ErrInvalidConfig)
	})
}

func TestThresholdLockout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	limiter := newTestLimiter(t, ratelimit.Config{Threshold: 5, Window: time.Minute})

	const key = "principal-1|2fa"

	// Below the threshold every check passes.
	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.EnsureNotLimited(ctx, key))
		require.NoError(t, limiter.Hit(ctx, key))
	}

	// Fifth hit reached the threshold: the next check is denied with a
	// positive retry-after.
	err := limiter.EnsureNotLimited(ctx, key)
	require.ErrorIs(t, err, ratelimit.ErrTooManyAttempts)

	var tooMany *ratelimit.TooManyAttemptsError
	require.ErrorAs(t, err, &tooMany)
	assert.Positive(t, tooMany.RetryAfter)
	assert.LessOrEqual(t, tooMany.RetryAfter, time.Minute)

	// Other keys are unaffected.
	assert.NoError(t, limiter.EnsureNotLimited(ctx, "principal-2|2fa"))
}

func TestClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	limiter := newTestLimiter(t, ratelimit.Config{Threshold: 3, Window: time.Minute})

	const key = "principal-1|2fa"
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Hit(ctx, key))
	}
	require.ErrorIs(t, limiter.EnsureNotLimited(ctx, key), ratelimit.ErrTooManyAttempts)

	require.NoError(t, limiter.Clear(ctx, key))
	assert.NoError(t, limiter.EnsureNotLimited(ctx, key))
}

func TestWindowExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	limiter := newTestLimiter(t, ratelimit.Config{Threshold: 2, Window: 50 * time.Millisecond})

	const key = "principal-1|2fa"
	require.NoError(t, limiter.Hit(ctx, key))
	require.NoError(t, limiter.Hit(ctx, key))
	require.ErrorIs(t, limiter.EnsureNotLimited(ctx, key), ratelimit.ErrTooManyAttempts)

	// Once the window elapses the counter implicitly resets.
	time.Sleep(80 * time.Millisecond)
	assert.NoError(t, limiter.EnsureNotLimited(ctx, key))

	// A fresh hit starts a new window from one.
	require.NoError(t, limiter.Hit(ctx, key))
	assert.NoError(t, limiter.EnsureNotLimited(ctx, key))
}

func TestWindowAnchoredToFirstHit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := ratelimit.NewMemoryStore(ratelimit.WithCleanupInterval(0))
	t.Cleanup(func() { _ = store.Close() })

	const window = 100 * time.Millisecond
	count, _, err := store.IncrementAndGet(ctx, "k", window)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	time.Sleep(40 * time.Millisecond)
	_, ttl, err := store.IncrementAndGet(ctx, "k", window)
	require.NoError(t, err)
	// Later hits must not extend the window past the first hit's anchor.
	assert.Less(t, ttl, window)
}

func TestEnsureNotLimitedDoesNotConsume(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	limiter := newTestLimiter(t, ratelimit.Config{Threshold: 2, Window: time.Minute})

	const key = "principal-1|2fa"
	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.EnsureNotLimited(ctx, key))
	}
	require.NoError(t, limiter.Hit(ctx, key))
	assert.NoError(t, limiter.EnsureNotLimited(ctx, key))
}

func TestConcurrentHits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := ratelimit.NewMemoryStore(ratelimit.WithCleanupInterval(0))
	t.Cleanup(func() { _ = store.Close() })

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			_, _, _ = store.IncrementAndGet(ctx, "k", time.Minute)
		}()
	}
	wg.Wait()

	count, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.EqualValues(t, goroutines, count, "concurrent hits must not undercount")
}
