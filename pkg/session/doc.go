// Package session provides the ephemeral, client-scoped state that carries
// a login through the second-factor challenge.
//
// A Session is a keyed bag of data plus an optional authenticated user ID.
// The challenge flow stores its pending marker ("login.id", "login.remember")
// here — never in the permanent principal record and never in plaintext
// secret form. Sessions expire by timestamp, checked lazily on access; the
// memory store additionally sweeps expired entries in the background.
package session
