package twofactor_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplane/authcore/pkg/principal"
	"github.com/shoplane/authcore/pkg/recovery"
	"github.com/shoplane/authcore/pkg/secretcodec"
	"github.com/shoplane/authcore/pkg/totp"
	"github.com/shoplane/authcore/pkg/twofactor"
)

func newService(t *testing.T) (*twofactor.Service, *principal.MemoryStore, uuid.UUID) {
	t.Helper()

	codec, err := secretcodec.New([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	store := principal.NewMemoryStore()
	p := &principal.Principal{
		ID:         uuid.New(),
		Email:      uuid.NewString() + "@example.com",
		Name:       "Enrollment User",
		IsVerified: true,
	}
	require.NoError(t, store.Create(context.Background(), p))

	svc, err := twofactor.NewService(store, codec, "Shoplane")
	require.NoError(t, err)
	return svc, store, p.ID
}

func TestService_Enable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store, id := newService(t)

	enrollment, err := svc.Enable(ctx, id)
	require.NoError(t, err)

	assert.NotEmpty(t, enrollment.Secret)
	assert.True(t, strings.HasPrefix(enrollment.URI, "otpauth://totp/"))
	assert.Contains(t, enrollment.URI, "issuer=Shoplane")
	assert.Len(t, enrollment.RecoveryCodes, recovery.DefaultCount)
	assert.True(t, bytes.HasPrefix(enrollment.QRCode, []byte("\x89PNG")))

	// Persisted state is encrypted and unconfirmed.
	stored, err := store.Find(ctx, id)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.TotpSecretEncrypted)
	assert.NotEqual(t, enrollment.Secret, stored.TotpSecretEncrypted)
	assert.NotEmpty(t, stored.RecoveryCodesEncrypted)
	assert.True(t, stored.TwoFactorPending())
	assert.False(t, stored.TwoFactorEnabled())
}

func TestService_EnableRotatesPendingSecret(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, id := newService(t)

	first, err := svc.Enable(ctx, id)
	require.NoError(t, err)

	second, err := svc.Enable(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, first.Secret, second.Secret)
}

func TestService_Confirm(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store, id := newService(t)

	enrollment, err := svc.Enable(ctx, id)
	require.NoError(t, err)

	code, err := totp.Generate(enrollment.Secret)
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(ctx, id, code))

	stored, err := store.Find(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.TwoFactorEnabled())

	// A confirmed factor cannot be re-enabled or re-confirmed.
	_, err = svc.Enable(ctx, id)
	assert.ErrorIs(t, err, twofactor.ErrAlreadyEnabled)
	assert.ErrorIs(t, svc.Confirm(ctx, id, code), twofactor.ErrAlreadyEnabled)
}

func TestService_ConfirmRejections(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, id := newService(t)

	// Nothing issued yet.
	err := svc.Confirm(ctx, id, "123456")
	assert.ErrorIs(t, err, twofactor.ErrNotEnabled)

	enrollment, err := svc.Enable(ctx, id)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Confirm(ctx, id, "12345"), twofactor.ErrInvalidCodeFormat)
	assert.ErrorIs(t, svc.Confirm(ctx, id, "abcdef"), twofactor.ErrInvalidCodeFormat)

	valid, err := totp.Generate(enrollment.Secret)
	require.NoError(t, err)
	wrong := "000000"
	if wrong == valid {
		wrong = "000001"
	}
	assert.ErrorIs(t, svc.Confirm(ctx, id, wrong), twofactor.ErrInvalidCode)
}

func TestService_Disable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store, id := newService(t)

	enrollment, err := svc.Enable(ctx, id)
	require.NoError(t, err)
	code, err := totp.Generate(enrollment.Secret)
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(ctx, id, code))

	require.NoError(t, svc.Disable(ctx, id))

	stored, err := store.Find(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, stored.TotpSecretEncrypted)
	assert.Empty(t, stored.RecoveryCodesEncrypted)
	assert.Nil(t, stored.TotpConfirmedAt)

	assert.ErrorIs(t, svc.Disable(ctx, id), twofactor.ErrNotEnabled)
}

func TestService_RegenerateRecoveryCodes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, id := newService(t)

	_, err := svc.RegenerateRecoveryCodes(ctx, id)
	assert.ErrorIs(t, err, twofactor.ErrNotEnabled)

	enrollment, err := svc.Enable(ctx, id)
	require.NoError(t, err)

	fresh, err := svc.RegenerateRecoveryCodes(ctx, id)
	require.NoError(t, err)
	assert.Len(t, fresh, recovery.DefaultCount)
	assert.NotEqual(t, enrollment.RecoveryCodes, fresh)

	shown, err := svc.RecoveryCodes(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, fresh, shown)
}

func TestService_RecoveryCodesNotEnabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, id := newService(t)

	_, err := svc.RecoveryCodes(ctx, id)
	assert.ErrorIs(t, err, twofactor.ErrNotEnabled)
}

func TestService_UnknownPrincipal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.Enable(ctx, uuid.New())
	assert.ErrorIs(t, err, principal.ErrNotFound)
}
