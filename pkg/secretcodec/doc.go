// Package secretcodec provides reversible encryption-at-rest for
// authentication secrets (TOTP shared secrets, recovery-code sets).
//
// Values handled here must be re-displayed or re-used later, so they are
// encrypted with AES-256-GCM rather than hashed. Ciphertexts are
// base64-encoded strings with the random nonce prepended, suitable for
// storage in a text column.
//
// A single Codec instance is shared by every component that persists
// secrets, so the key is configured once via AUTHCORE_ENCRYPTION_KEY
// (base64-encoded 32 bytes). Use cmd/keygen to mint a key.
package secretcodec
