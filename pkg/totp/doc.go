// Package totp implements RFC 6238 time-based one-time passwords for the
// second-factor login challenge and 2FA enrollment.
//
// The engine is stateless: it generates base32 shared secrets, builds
// otpauth:// provisioning URIs for authenticator apps, and verifies
// submitted codes against the current 30-second step with a ±1 step
// tolerance for clock drift. Code comparison is constant-time.
//
// Verification is deliberately forgiving at the API level: a malformed
// secret or a non-numeric code yields false rather than an error, so the
// challenge layer can treat every non-match uniformly. Secrets never leave
// this package in logs or errors.
package totp
