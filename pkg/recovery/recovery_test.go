package recovery_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplane/authcore/pkg/recovery"
)

var codeFormat = regexp.MustCompile(`^[0-9A-Za-z]{10}-[0-9A-Za-z]{10}$`)

func TestGenerateSet(t *testing.T) {
	t.Parallel()

	t.Run("default count", func(t *testing.T) {
		t.Parallel()
		set, err := recovery.GenerateSet(recovery.DefaultCount)
		require.NoError(t, err)
		require.Len(t, set, 8)

		seen := make(map[string]struct{}, len(set))
		for _, code := range set {
			assert.Regexp(t, codeFormat, code)
			_, dup := seen[code]
			assert.False(t, dup, "codes must be unique within a set")
			seen[code] = struct{}{}
		}
	})

	t.Run("invalid count", func(t *testing.T) {
		t.Parallel()
		_, err := recovery.GenerateSet(0)
		assert.ErrorIs(t, err, recovery.ErrInvalidCodeCount)
	})

	t.Run("two sets are independent", func(t *testing.T) {
		t.Parallel()
		a, err := recovery.GenerateSet(recovery.DefaultCount)
		require.NoError(t, err)
		b, err := recovery.GenerateSet(recovery.DefaultCount)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestConsume(t *testing.T) {
	t.Parallel()

	t.Run("valid code removed exactly once", func(t *testing.T) {
		t.Parallel()
		set, err := recovery.GenerateSet(recovery.DefaultCount)
		require.NoError(t, err)

		target := set[3]
		updated, consumed := set.Consume(target)
		assert.True(t, consumed)
		assert.Len(t, updated, 7)
		assert.False(t, updated.Contains(target))
		for _, code := range set {
			if code != target {
				assert.True(t, updated.Contains(code), "only the consumed code may be removed")
			}
		}

		// Single-use: the same code fails on the reduced set.
		again, consumed := updated.Consume(target)
		assert.False(t, consumed)
		assert.Equal(t, updated, again)
	})

	t.Run("receiver is not mutated", func(t *testing.T) {
		t.Parallel()
		set := recovery.Set{"aaaa-bbbb", "cccc-dddd", "eeee-ffff"}
		_, consumed := set.Consume("cccc-dddd")
		require.True(t, consumed)
		assert.Equal(t, recovery.Set{"aaaa-bbbb", "cccc-dddd", "eeee-ffff"}, set)
	})

	t.Run("case sensitive match", func(t *testing.T) {
		t.Parallel()
		set := recovery.Set{"AB12CD34EF-GH56IJ78KL"}
		_, consumed := set.Consume("ab12cd34ef-gh56ij78kl")
		assert.False(t, consumed)
	})

	t.Run("no match returns input unchanged", func(t *testing.T) {
		t.Parallel()
		set := recovery.Set{"aaaa-bbbb"}
		updated, consumed := set.Consume("zzzz-yyyy")
		assert.False(t, consumed)
		assert.Equal(t, set, updated)
	})
}

func TestEncodeDecodeSet(t *testing.T) {
	t.Parallel()

	set, err := recovery.GenerateSet(recovery.DefaultCount)
	require.NoError(t, err)

	raw, err := recovery.EncodeSet(set)
	require.NoError(t, err)

	decoded, err := recovery.DecodeSet(raw)
	require.NoError(t, err)
	assert.Equal(t, set, decoded)

	_, err = recovery.DecodeSet("{not json")
	assert.ErrorIs(t, err, recovery.ErrFailedToDecodeSet)
}
