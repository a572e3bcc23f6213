// Package challenge implements the second-factor login challenge: after a
// password check succeeds, a pending marker is parked in the session and the
// login completes only once a valid TOTP or recovery code is submitted.
//
// The session carries only the principal ID and the remember flag while the
// challenge is pending. Attempt counting, lockout, and recovery-code
// consumption are serialized per principal, so concurrent submissions cannot
// double-spend a code or bypass the limiter.
package challenge
