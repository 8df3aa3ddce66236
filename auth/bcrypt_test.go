package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/emirkorkmazz/lokanta-api/auth"
)

func TestMain(m *testing.M) {
	// expensive hashing is pointless in tests
	auth.SetBcryptCost(bcrypt.MinCost)
	m.Run()
}

func TestHashPassword(t *testing.T) {
	t.Run("hashes a password", func(t *testing.T) {
		hash, err := auth.HashPassword("secret-password")
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.NotEqual(t, "secret-password", hash)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := auth.HashPassword("")
		assert.ErrorIs(t, err, auth.ErrNoEmptyString)
	})

	t.Run("same plaintext yields distinct digests", func(t *testing.T) {
		hash1, err := auth.HashPassword("secret-password")
		require.NoError(t, err)
		hash2, err := auth.HashPassword("secret-password")
		require.NoError(t, err)

		assert.NotEqual(t, hash1, hash2)
		assert.NoError(t, auth.ComparePasswordAndHash("secret-password", hash1))
		assert.NoError(t, auth.ComparePasswordAndHash("secret-password", hash2))
	})
}

func TestComparePasswordAndHash(t *testing.T) {
	hash, err := auth.HashPassword("secret-password")
	require.NoError(t, err)

	t.Run("matches the original plaintext", func(t *testing.T) {
		assert.NoError(t, auth.ComparePasswordAndHash("secret-password", hash))
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		err := auth.ComparePasswordAndHash("not-the-password", hash)
		assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
	})

	t.Run("malformed hash fails verification without panicking", func(t *testing.T) {
		err := auth.ComparePasswordAndHash("secret-password", "not-a-bcrypt-hash")
		assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
	})
}
