package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTooManyAttempts is the sentinel matched by errors.Is for lockouts.
	ErrTooManyAttempts = errors.New("too many attempts")

	ErrInvalidConfig = errors.New("invalid rate limit config")
	ErrKeyRequired   = errors.New("key is required")
	ErrStoreRequired = errors.New("store is required")
)

// TooManyAttemptsError is returned by EnsureNotLimited when the attempt
// threshold has been reached. RetryAfter tells the caller how long until the
// window expires and attempts are allowed again.
type TooManyAttemptsError struct {
	RetryAfter time.Duration
}

func (e *TooManyAttemptsError) Error() string {
	return fmt.Sprintf("too many attempts, retry after %s", e.RetryAfter.Round(time.Second))
}

// Is makes errors.Is(err, ErrTooManyAttempts) work for this error.
func (e *TooManyAttemptsError) Is(target error) bool {
	return target == ErrTooManyAttempts
}
