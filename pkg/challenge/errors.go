package challenge

import "errors"

var (
	// ErrSessionExpired indicates there is no pending challenge, either
	// because the session is gone or the marker was never set.
	ErrSessionExpired = errors.New("challenge session expired")

	// ErrInvalidCode indicates a well-formed TOTP code that did not verify.
	ErrInvalidCode = errors.New("invalid one-time code")

	// ErrInvalidRecoveryCode indicates a recovery code not present in the set.
	ErrInvalidRecoveryCode = errors.New("invalid recovery code")

	// ErrInvalidCodeFormat indicates a malformed code, rejected before any
	// attempt is consumed.
	ErrInvalidCodeFormat = errors.New("invalid code format")

	// ErrTwoFactorNotEnabled indicates the principal has no confirmed second
	// factor to challenge against.
	ErrTwoFactorNotEnabled = errors.New("two-factor authentication not enabled")

	ErrPrincipalStoreRequired = errors.New("principal store is required")
	ErrSessionStoreRequired   = errors.New("session store is required")
	ErrCodecRequired          = errors.New("secret codec is required")
	ErrLimiterRequired        = errors.New("rate limiter is required")
)
