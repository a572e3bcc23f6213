// Package twofactor manages the enrollment lifecycle of a TOTP second
// factor: issuing a secret, confirming possession, regenerating recovery
// codes, and disabling the factor.
//
// Secrets and recovery codes cross the storage boundary only encrypted; the
// plaintext material appears solely in the Enrollment returned to the caller
// for display.
package twofactor
