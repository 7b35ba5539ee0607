package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"pgregory.net/rapid"
)

func cheapHashes(t *testing.T) {
	prev := hashCost
	hashCost = bcrypt.MinCost
	t.Cleanup(func() { hashCost = prev })
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("salt-and-brine")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestCheckPassword(t *testing.T) {
	cheapHashes(t)
	hash, err := HashPassword("salt-and-brine")
	require.NoError(t, err)
	assert.NotEqual(t, "salt-and-brine", hash)
	assert.True(t, CheckPassword("salt-and-brine", hash))
	assert.False(t, CheckPassword("salt-and-honey", hash))
	assert.False(t, CheckPassword("salt-and-brine", "not a hash"))
}

func TestHashPassword_RejectsBadLengths(t *testing.T) {
	cheapHashes(t)
	_, err := HashPassword("")
	assert.ErrorIs(t, err, ErrBadPassword)
	_, err = HashPassword(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrBadPassword)
	_, err = HashPassword(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)
}

// Property: a hash verifies its own password and no other.
func TestPropertyHashVerifiesOnlyItsPassword(t *testing.T) {
	cheapHashes(t)
	rapid.Check(t, func(t *rapid.T) {
		pw := rapid.StringMatching(`[a-zA-Z0-9!@#$%^&*-]{1,32}`).Draw(t, "pw")
		other := rapid.StringMatching(`[a-zA-Z0-9!@#$%^&*-]{1,32}`).Draw(t, "other")
		hash, err := HashPassword(pw)
		if err != nil {
			t.Fatalf("hashing %q: %v", pw, err)
		}
		if !CheckPassword(pw, hash) {
			t.Fatalf("hash rejects its own password %q", pw)
		}
		if other != pw && CheckPassword(other, hash) {
			t.Fatalf("hash of %q accepts %q", pw, other)
		}
	})
}
