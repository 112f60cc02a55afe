// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"identity/config"
	"identity/internal/domain/entity"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/service"
	"identity/internal/errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptMaxPasswordBytes is the input limit of bcrypt; longer inputs are rejected
// rather than silently truncated.
const bcryptMaxPasswordBytes = entity.MaxPasswordBytes

var errEmptyPassword = errors.New("password cannot be empty")

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher builds a hasher with the configured cost.
// A zero cost falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cfg *config.Config) (service.PasswordHasher, error) {
	cost := bcrypt.DefaultCost
	if cfg != nil && cfg.Auth != nil && cfg.Auth.BcryptCost != 0 {
		cost = cfg.Auth.BcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, domainerrors.ErrConfiguration.WrapMessage("bcrypt cost out of range")
	}

	return NewBcryptHasherWithCost(cost), nil
}

// NewBcryptHasherWithCost skips config lookup. Tests use it with bcrypt.MinCost.
func NewBcryptHasherWithCost(cost int) service.PasswordHasher {
	return &bcryptHasher{cost: cost}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt draws a fresh random salt per call and embeds it in the output.
func (h *bcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errEmptyPassword
	}
	if len(password) > bcryptMaxPasswordBytes {
		return "", bcrypt.ErrPasswordTooLong
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt.GenerateFromPassword")
	}

	return string(bytes), nil
}

// Verify compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Verify(password, hash string) bool {
	// err is nil only if the password and hash match.
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
