// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"identity/internal/domain/entity"

	"github.com/google/uuid"
)

// CredentialStore owns the durable user record and its password hash.
type CredentialStore interface {
	// Create validates, hashes and persists a new user. Validation failures,
	// including uniqueness conflicts, are *domainerrors.ValidationError and
	// leave storage untouched.
	Create(ctx context.Context, input *entity.RegisterUserInput) (*entity.PublicUser, error)

	// FindByEmail returns the full record including PasswordHash. Only for
	// in-process callers; never hand the result across a boundary.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID returns the public projection of a user.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PublicUser, error)
}
