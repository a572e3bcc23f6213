package twofactor

import "errors"

var (
	// ErrAlreadyEnabled indicates the principal already has a confirmed
	// second factor; it must be disabled before re-enrolling.
	ErrAlreadyEnabled = errors.New("two-factor authentication already enabled")

	// ErrNotEnabled indicates no secret has been issued for the principal.
	ErrNotEnabled = errors.New("two-factor authentication not enabled")

	// ErrInvalidCode indicates the confirmation code did not verify against
	// the issued secret.
	ErrInvalidCode = errors.New("invalid one-time code")

	// ErrInvalidCodeFormat indicates a malformed confirmation code.
	ErrInvalidCodeFormat = errors.New("invalid code format")

	ErrPrincipalStoreRequired = errors.New("principal store is required")
	ErrCodecRequired          = errors.New("secret codec is required")
)
