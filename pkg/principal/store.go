package principal

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the storage operations the authentication core requires.
type Store interface {
	// Find retrieves a principal by ID.
	Find(ctx context.Context, id uuid.UUID) (*Principal, error)

	// FindByEmail retrieves a principal by its (unique) email.
	FindByEmail(ctx context.Context, email string) (*Principal, error)

	// Create persists a new principal. Returns ErrEmailAlreadyExists when
	// the email is taken.
	Create(ctx context.Context, p *Principal) error

	// Save persists changes to an existing principal.
	Save(ctx context.Context, p *Principal) error
}
