// Package recovery generates and consumes single-use recovery codes, the
// backup credential for principals who lose access to their authenticator
// device.
//
// A Set is issued wholesale (8 codes by default) when 2FA is enabled or when
// the user regenerates their codes. Consumption is strictly one-time: a
// matched code is removed from the returned set and the caller is expected
// to re-encrypt and persist that reduced set. Consume never mutates its
// receiver, so a failed persistence step cannot corrupt the in-memory copy.
//
// Codes are two 10-character alphanumeric segments joined by a dash
// (e.g. "aB3xK9mQ2z-Pd41sVn8Yw"), roughly 119 bits of entropy each.
package recovery
