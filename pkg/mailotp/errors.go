package mailotp

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSessionExpired indicates no pending operation exists for the key.
	ErrSessionExpired = errors.New("verification session expired")

	// ErrCodeExpired indicates the pending code outlived its validity window.
	ErrCodeExpired = errors.New("verification code expired")

	// ErrTooManyAttempts indicates the attempt cap was reached; the pending
	// operation can only be completed after a resend.
	ErrTooManyAttempts = errors.New("too many verification attempts")

	// ErrInvalidCode indicates a well-formed code that did not match.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrInvalidCodeFormat indicates a malformed code, rejected before any
	// attempt is consumed.
	ErrInvalidCodeFormat = errors.New("invalid code format")

	// ErrResendTooSoon is the sentinel matched by errors.Is for throttled
	// resends.
	ErrResendTooSoon = errors.New("resend requested too soon")

	// ErrInvalidPayload indicates a pending operation missing required fields.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrRecordNotFound is returned by stores for unknown keys.
	ErrRecordNotFound = errors.New("pending record not found")

	ErrStoreRequired          = errors.New("pending store is required")
	ErrPrincipalStoreRequired = errors.New("principal store is required")
	ErrSenderRequired         = errors.New("notification sender is required")
)

// ResendTooSoonError is returned by Resend while the cooldown is active.
// Wait tells the caller how long until a resend is accepted.
type ResendTooSoonError struct {
	Wait time.Duration
}

func (e *ResendTooSoonError) Error() string {
	return fmt.Sprintf("resend requested too soon, wait %s", e.Wait.Round(time.Second))
}

// Is makes errors.Is(err, ErrResendTooSoon) work for this error.
func (e *ResendTooSoonError) Is(target error) bool {
	return target == ErrResendTooSoon
}
