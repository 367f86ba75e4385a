package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

// TestHashAndVerifyPassword checks the round trip at the cheapest cost so
// the suite stays fast.
func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "s3cret!", hash, "hash must not be the plaintext")

	assert.True(t, VerifyPassword(hash, "s3cret!"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "s3cret!"))
}

// TestHashPasswordCostClamp verifies that an out-of-range cost falls back
// to the bcrypt default instead of erroring or hashing weakly.
func TestHashPasswordCostClamp(t *testing.T) {
	for _, cost := range []int{-1, 0, bcrypt.MaxCost + 1} {
		hash, err := HashPassword("pw", cost)
		require.NoError(t, err, "cost %d", cost)

		got, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.DefaultCost, got, "cost %d", cost)
		assert.True(t, VerifyPassword(hash, "pw"))
	}
}

// TestHashPasswordUnique verifies that the salt makes two hashes of the
// same password differ.
func TestHashPasswordUnique(t *testing.T) {
	h1, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
