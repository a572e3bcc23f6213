// Package mailotp implements email-delivered one-time codes for operations
// that must prove control of a mailbox before they take effect: account
// registration and email-address changes.
//
// The pending operation is parked in a short-lived record keyed by the
// caller's session. Codes are uniform 6-digit numbers, stored only as bcrypt
// hashes, and expire after ten minutes. Verification is capped at five
// attempts and resends are throttled.
package mailotp
