package auth

import (
	"strings"
	"testing"

	"identity/config"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost)

	password := "p1"
	hash, err := hasher.Hash(password)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	// Verify the hash can be checked
	assert.True(t, hasher.Verify(password, hash))
}

func TestBcryptHasher_SaltPerCall(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost)

	first, err := hasher.Hash("samepassword")
	require.NoError(t, err)
	second, err := hasher.Hash("samepassword")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("samepassword", first))
	assert.True(t, hasher.Verify("samepassword", second))
}

func TestBcryptHasher_Verify(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost)
	password := "StrongPass123!"

	hash, err := hasher.Hash(password)
	require.NoError(t, err)

	tests := []struct {
		name      string
		candidate string
		hash      string
		want      bool
	}{
		{name: "correct password", candidate: password, hash: hash, want: true},
		{name: "wrong password", candidate: "WrongPassword123!", hash: hash, want: false},
		{name: "case differs", candidate: strings.ToLower(password), hash: hash, want: false},
		{name: "empty password", candidate: "", hash: hash, want: false},
		{name: "malformed hash", candidate: password, hash: "invalid_hash", want: false},
		{name: "empty hash", candidate: password, hash: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasher.Verify(tt.candidate, tt.hash))
		})
	}
}

func TestBcryptHasher_RejectsUnhashableInput(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost)

	_, err := hasher.Hash("")
	assert.Error(t, err)

	_, err = hasher.Hash(strings.Repeat("a", bcryptMaxPasswordBytes+1))
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}

func TestNewBcryptHasher_Cost(t *testing.T) {
	t.Run("configured cost is used", func(t *testing.T) {
		hasher, err := NewBcryptHasher(&config.Config{Auth: &config.AuthConfig{BcryptCost: 5}})
		require.NoError(t, err)

		hash, err := hasher.Hash("p1")
		require.NoError(t, err)

		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, 5, cost)
	})

	t.Run("missing auth config falls back to default", func(t *testing.T) {
		hasher, err := NewBcryptHasher(&config.Config{})
		require.NoError(t, err)
		assert.Equal(t, bcrypt.DefaultCost, hasher.(*bcryptHasher).cost)
	})

	t.Run("out of range cost is a configuration error", func(t *testing.T) {
		_, err := NewBcryptHasher(&config.Config{Auth: &config.AuthConfig{BcryptCost: bcrypt.MaxCost + 1}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrConfiguration))
	})
}
