// Package principal defines the persisted user identity consumed by the
// authentication core, together with its storage contract.
//
// Secrets cross this boundary only in encrypted form: TotpSecretEncrypted
// and RecoveryCodesEncrypted hold secretcodec ciphertexts, never plaintext.
// TotpConfirmedAt distinguishes "secret issued" (enrollment started) from
// "2FA active" (possession proven); the services in pkg/twofactor and
// pkg/challenge maintain the invariant that a confirmation timestamp or a
// recovery-code set is only ever present alongside a secret.
//
// Two Store implementations ship with the package: MemoryStore for tests
// and single-process use, and PostgresStore on pgx for production.
package principal
