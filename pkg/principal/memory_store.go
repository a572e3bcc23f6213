package principal

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store with an in-memory map. Intended for tests
// and single-process development setups.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*Principal
	byEmail map[string]uuid.UUID
}

// NewMemoryStore creates an empty in-memory principal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[uuid.UUID]*Principal),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (m *MemoryStore) Find(ctx context.Context, id uuid.UUID) (*Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, exists := m.byID[id]
	if !exists {
		return nil, ErrNotFound
	}
	return copyPrincipal(p), nil
}

func (m *MemoryStore) FindByEmail(ctx context.Context, email string) (*Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, exists := m.byEmail[normalizeEmail(email)]
	if !exists {
		return nil, ErrNotFound
	}
	return copyPrincipal(m.byID[id]), nil
}

func (m *MemoryStore) Create(ctx context.Context, p *Principal) error {
	if p == nil || p.ID == uuid.Nil || p.Email == "" {
		return ErrInvalidPrincipal
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	email := normalizeEmail(p.Email)
	if _, taken := m.byEmail[email]; taken {
		return ErrEmailAlreadyExists
	}
	if _, exists := m.byID[p.ID]; exists {
		return ErrInvalidPrincipal
	}

	now := time.Now()
	stored := copyPrincipal(p)
	stored.CreatedAt = now
	stored.UpdatedAt = now

	m.byID[p.ID] = stored
	m.byEmail[email] = p.ID
	return nil
}

func (m *MemoryStore) Save(ctx context.Context, p *Principal) error {
	if p == nil || p.ID == uuid.Nil || p.Email == "" {
		return ErrInvalidPrincipal
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.byID[p.ID]
	if !exists {
		return ErrNotFound
	}

	email := normalizeEmail(p.Email)
	if owner, taken := m.byEmail[email]; taken && owner != p.ID {
		return ErrEmailAlreadyExists
	}

	if oldEmail := normalizeEmail(existing.Email); oldEmail != email {
		delete(m.byEmail, oldEmail)
		m.byEmail[email] = p.ID
	}

	stored := copyPrincipal(p)
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	m.byID[p.ID] = stored
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func copyPrincipal(p *Principal) *Principal {
	principalCopy := *p
	if p.PasswordHash != nil {
		principalCopy.PasswordHash = make([]byte, len(p.PasswordHash))
		copy(principalCopy.PasswordHash, p.PasswordHash)
	}
	if p.TotpConfirmedAt != nil {
		t := *p.TotpConfirmedAt
		principalCopy.TotpConfirmedAt = &t
	}
	return &principalCopy
}
