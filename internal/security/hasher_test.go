package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("Secret1")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "Secret1", hash)

	assert.True(t, h.Verify("Secret1", hash))
	assert.False(t, h.Verify("wrong", hash))
}

func TestBcryptHasher_SaltedHashesDiffer(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	first, err := h.Hash("Secret1")
	require.NoError(t, err)
	second, err := h.Hash("Secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("Secret1", first))
	assert.True(t, h.Verify("Secret1", second))
}

func TestBcryptHasher_MalformedHashVerifiesFalse(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	assert.False(t, h.Verify("Secret1", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("Secret1", ""))
}

func TestNewBcryptHasher_CostFallback(t *testing.T) {
	h := NewBcryptHasher(1000)

	hash, err := h.Hash("pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
