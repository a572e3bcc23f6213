package principal_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplane/authcore/pkg/principal"
)

func newTestPrincipal(t *testing.T) *principal.Principal {
	t.Helper()
	return &principal.Principal{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		Name:         "Test User",
		PasswordHash: []byte("$2a$10$fakehashfortesting"),
		IsVerified:   true,
	}
}

func TestMemoryStore_CreateAndFind(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := principal.NewMemoryStore()

	p := newTestPrincipal(t)
	require.NoError(t, store.Create(ctx, p))

	found, err := store.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)
	assert.Equal(t, p.Email, found.Email)
	assert.False(t, found.CreatedAt.IsZero())

	byEmail, err := store.FindByEmail(ctx, p.Email)
	require.NoError(t, err)
	assert.Equal(t, p.ID, byEmail.ID)
}

func TestMemoryStore_FindNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := principal.NewMemoryStore()

	_, err := store.Find(ctx, uuid.New())
	assert.ErrorIs(t, err, principal.ErrNotFound)

	_, err = store.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, principal.ErrNotFound)
}

func TestMemoryStore_EmailLookupIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := principal.NewMemoryStore()

	p := newTestPrincipal(t)
	p.Email = "Mixed.Case@Example.com"
	require.NoError(t, store.Create(ctx, p))

	found, err := store.FindByEmail(ctx, "mixed.case@example.com")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)
}

func TestMemoryStore_DuplicateEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := principal.NewMemoryStore()

	first := newTestPrincipal(t)
	require.NoError(t, store.Create(ctx, first))

	second := newTestPrincipal(t)
	second.Email = first.Email
	err := store.Create(ctx, second)
	assert.ErrorIs(t, err, principal.ErrEmailAlreadyExists)
}

func TestMemoryStore_Save(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := principal.NewMemoryStore()

	p := newTestPrincipal(t)
	require.NoError(t, store.Create(ctx, p))

	created, err := store.Find(ctx, p.ID)
	require.NoError(t, err)

	now := time.Now()
	created.TotpSecretEncrypted = "ciphertext"
	created.TotpConfirmedAt = &now
	require.NoError(t, store.Save(ctx, created))

	saved, err := store.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "ciphertext", saved.TotpSecretEncrypted)
	require.NotNil(t, saved.TotpConfirmedAt)
	assert.True(t, saved.TwoFactorEnabled())
	assert.Equal(t, created.CreatedAt, saved.CreatedAt)
}

func TestMemoryStore_SaveUnknown(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := principal.NewMemoryStore()

	err := store.Save(ctx, newTestPrincipal(t))
	assert.ErrorIs(t, err, principal.ErrNotFound)
}

func TestMemoryStore_SaveEmailConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := principal.NewMemoryStore()

	first := newTestPrincipal(t)
	second := newTestPrincipal(t)
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, second))

	second.Email = first.Email
	err := store.Save(ctx, second)
	assert.ErrorIs(t, err, principal.ErrEmailAlreadyExists)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := principal.NewMemoryStore()

	p := newTestPrincipal(t)
	require.NoError(t, store.Create(ctx, p))

	found, err := store.Find(ctx, p.ID)
	require.NoError(t, err)
	found.Name = "mutated"
	found.PasswordHash[0] = 'X'

	again, err := store.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test User", again.Name)
	assert.Equal(t, byte('$'), again.PasswordHash[0])
}

func TestPrincipal_TwoFactorStates(t *testing.T) {
	t.Parallel()

	p := &principal.Principal{}
	assert.False(t, p.TwoFactorEnabled())
	assert.False(t, p.TwoFactorPending())

	p.TotpSecretEncrypted = "ciphertext"
	assert.False(t, p.TwoFactorEnabled())
	assert.True(t, p.TwoFactorPending())

	now := time.Now()
	p.TotpConfirmedAt = &now
	assert.True(t, p.TwoFactorEnabled())
	assert.False(t, p.TwoFactorPending())
}
