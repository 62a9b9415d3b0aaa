package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHasherCost(t *testing.T) {
	_, err := NewHasher(0)
	assert.NoError(t, err, "zero cost selects the default")

	_, err = NewHasher(3)
	assert.Error(t, err)

	_, err = NewHasher(32)
	assert.Error(t, err)
}

func TestHashAndVerify(t *testing.T) {
	h, err := NewHasher(4) // min cost keeps the test fast
	require.NoError(t, err)

	hash, err := h.Hash("correct-horse-battery")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"))

	assert.True(t, h.Verify("correct-horse-battery", hash))
	assert.False(t, h.Verify("wrong-password", hash))
}

func TestHashEmptyPassword(t *testing.T) {
	h, err := NewHasher(4)
	require.NoError(t, err)

	_, err = h.Hash("")
	assert.Error(t, err)
}

func TestVerifyMalformedHash(t *testing.T) {
	h, err := NewHasher(4)
	require.NoError(t, err)

	assert.False(t, h.Verify("anything", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("anything", ""))
}

func TestHashesAreSalted(t *testing.T) {
	h, err := NewHasher(4)
	require.NoError(t, err)

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
