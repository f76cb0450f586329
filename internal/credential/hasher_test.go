package credential

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)

	first, err := h.Hash("StrongPassword123!")
	require.NoError(t, err)
	second, err := h.Hash("StrongPassword123!")
	require.NoError(t, err)

	require.NotEqual(t, "StrongPassword123!", first)
	require.NotEqual(t, first, second, "digests must be salted")
	require.True(t, h.Verify("StrongPassword123!", first))
	require.True(t, h.Verify("StrongPassword123!", second))
	require.False(t, h.Verify("WrongPassword123!", first))
}

func TestVerifyMalformedDigest(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)
	require.False(t, h.Verify("anything", ""))
	require.False(t, h.Verify("anything", "not-a-bcrypt-digest"))
	require.False(t, h.Verify("anything", "$2a$10$short"))
}

func TestCostBounds(t *testing.T) {
	t.Parallel()

	require.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(1).Cost())
	require.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).Cost())
	require.Equal(t, 12, NewBcryptHasher(12).Cost())
}

func TestHashRejectsOverlongInput(t *testing.T) {
	t.Parallel()

	_, err := NewBcryptHasher(bcrypt.MinCost).Hash(strings.Repeat("a", MaxPasswordBytes+1))
	require.ErrorIs(t, err, ErrPasswordTooLong)
}
