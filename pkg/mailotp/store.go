package mailotp

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Purpose identifies the operation a pending code protects.
type Purpose string

const (
	PurposeRegistration Purpose = "registration"
	PurposeEmailChange  Purpose = "email_change"
)

// Payload carries the pending operation until the mailbox is proven.
type Payload struct {
	Purpose      Purpose
	Email        string // Target mailbox; the address being verified
	Name         string
	PasswordHash []byte    // Registration only
	PrincipalID  uuid.UUID // Email change only
}

func (p Payload) validate() error {
	if p.Email == "" {
		return ErrInvalidPayload
	}
	switch p.Purpose {
	case PurposeRegistration:
		if len(p.PasswordHash) == 0 {
			return ErrInvalidPayload
		}
	case PurposeEmailChange:
		if p.PrincipalID == uuid.Nil {
			return ErrInvalidPayload
		}
	default:
		return ErrInvalidPayload
	}
	return nil
}

// Record is a pending verification: the payload plus code state.
type Record struct {
	Key        string
	Payload    Payload
	CodeHash   []byte // bcrypt hash; the plaintext code is never stored
	Attempts   int
	ExpiresAt  time.Time
	LastSentAt time.Time
}

// IsExpired reports whether the code's validity window has passed.
func (r *Record) IsExpired() bool {
	return r != nil && time.Now().After(r.ExpiresAt)
}

// Store persists pending verification records.
type Store interface {
	// Put creates or replaces the record under its key.
	Put(ctx context.Context, record *Record) error

	// Get retrieves a record by key. Returns ErrRecordNotFound for unknown
	// keys and for records past their retention.
	Get(ctx context.Context, key string) (*Record, error)

	// Delete removes a record by key. Unknown keys are not an error.
	Delete(ctx context.Context, key string) error
}
