package secretcodec_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplane/authcore/pkg/secretcodec"
)

func newTestCodec(t *testing.T) *secretcodec.Codec {
	t.Helper()
	key, err := secretcodec.GenerateKey()
	require.NoError(t, err)
	codec, err := secretcodec.New(key)
	require.NoError(t, err)
	return codec
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid key", func(t *testing.T) {
		t.Parallel()
		key, err := secretcodec.GenerateKey()
		require.NoError(t, err)
		codec, err := secretcodec.New(key)
		require.NoError(t, err)
		assert.NotNil(t, codec)
	})

	t.Run("short key", func(t *testing.T) {
		t.Parallel()
		_, err := secretcodec.New([]byte("too-short"))
		assert.ErrorIs(t, err, secretcodec.ErrInvalidKeyLength)
	})

	t.Run("nil key", func(t *testing.T) {
		t.Parallel()
		_, err := secretcodec.New(nil)
		assert.ErrorIs(t, err, secretcodec.ErrInvalidKeyLength)
	})
}

func TestEncryptDecrypt(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	tests := []struct {
		name      string
		plainText string
	}{
		{name: "totp secret", plainText: "JBSWY3DPEHPK3PXPJBSWY3DPEH"},
		{name: "empty string", plainText: ""},
		{name: "json recovery codes", plainText: `["a1b2c3d4e5-f6g7h8i9j0","k1l2m3n4o5-p6q7r8s9t0"]`},
		{name: "unicode", plainText: "pässwörd-日本語"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cipherText, err := codec.Encrypt(tt.plainText)
			require.NoError(t, err)
			assert.NotEqual(t, tt.plainText, cipherText)

			decrypted, err := codec.Decrypt(cipherText)
			require.NoError(t, err)
			assert.Equal(t, tt.plainText, decrypted)
		})
	}
}

func TestEncryptProducesUniqueCiphertexts(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	first, err := codec.Encrypt("same input")
	require.NoError(t, err)
	second, err := codec.Encrypt("same input")
	require.NoError(t, err)

	// Random nonce per encryption: identical plaintexts must not produce
	// identical ciphertexts.
	assert.NotEqual(t, first, second)
}

func TestDecryptFailures(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	t.Run("not base64", func(t *testing.T) {
		t.Parallel()
		_, err := codec.Decrypt("!!! not base64 !!!")
		assert.ErrorIs(t, err, secretcodec.ErrFailedToDecrypt)
	})

	t.Run("too short", func(t *testing.T) {
		t.Parallel()
		_, err := codec.Decrypt(base64.StdEncoding.EncodeToString([]byte("abc")))
		assert.ErrorIs(t, err, secretcodec.ErrCipherTooShort)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		t.Parallel()
		cipherText, err := codec.Encrypt("sensitive value")
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(cipherText)
		require.NoError(t, err)
		raw[len(raw)-1] ^= 0xff
		_, err = codec.Decrypt(base64.StdEncoding.EncodeToString(raw))
		assert.ErrorIs(t, err, secretcodec.ErrFailedToDecrypt)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		other := newTestCodec(t)
		cipherText, err := codec.Encrypt("sensitive value")
		require.NoError(t, err)
		_, err = other.Decrypt(cipherText)
		assert.ErrorIs(t, err, secretcodec.ErrFailedToDecrypt)
	})
}

func TestGenerateEncodedKey(t *testing.T) {
	t.Parallel()
	encoded, err := secretcodec.GenerateEncodedKey()
	require.NoError(t, err)

	key, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Len(t, key, secretcodec.KeySize)
}
