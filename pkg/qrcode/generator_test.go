package qrcode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplane/authcore/pkg/qrcode"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("provisioning URI", func(t *testing.T) {
		t.Parallel()
		png, err := qrcode.Generate("otpauth://totp/Shop:user@example.com?secret=ABCDEFGHIJKLMNOP", 256)
		require.NoError(t, err)
		// PNG magic header
		assert.True(t, len(png) > 8)
		assert.Equal(t, "\x89PNG", string(png[:4]))
	})

	t.Run("zero size falls back to default", func(t *testing.T) {
		t.Parallel()
		png, err := qrcode.Generate("hello", 0)
		require.NoError(t, err)
		assert.NotEmpty(t, png)
	})

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()
		_, err := qrcode.Generate("   ", 256)
		assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
	})
}

func TestGenerateDataURI(t *testing.T) {
	t.Parallel()
	uri, err := qrcode.GenerateDataURI("otpauth://totp/Shop:user@example.com?secret=ABCDEFGHIJKLMNOP", 256)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}
