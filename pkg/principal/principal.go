package principal

import (
	"time"

	"github.com/google/uuid"
)

// Principal represents a user account as seen by the authentication core.
type Principal struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash []byte
	IsVerified   bool

	// Present only while 2FA is enabled; secretcodec ciphertext.
	TotpSecretEncrypted string
	// Set once the user proves possession of the secret.
	TotpConfirmedAt *time.Time
	// Encrypted serialized recovery-code set; meaningless without a secret.
	RecoveryCodesEncrypted string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TwoFactorEnabled reports whether the principal has an active, confirmed
// second factor.
func (p *Principal) TwoFactorEnabled() bool {
	return p != nil && p.TotpConfirmedAt != nil && p.TotpSecretEncrypted != ""
}

// TwoFactorPending reports whether a secret has been issued but not yet
// confirmed (enrollment in progress).
func (p *Principal) TwoFactorPending() bool {
	return p != nil && p.TotpConfirmedAt == nil && p.TotpSecretEncrypted != ""
}
