// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	// MaxUsernameLength is the longest username, in characters, the store accepts.
	MaxUsernameLength = 50

	// MaxEmailLength is the longest address a mail path can carry. It fits the column.
	MaxEmailLength = 254

	// MaxPasswordBytes is the bcrypt input limit. Longer passwords are rejected, not truncated.
	MaxPasswordBytes = 72
)

// User is the sole persisted identity record.
// PasswordHash never leaves the process; use Public for anything crossing a boundary.
type User struct {
	ID           uuid.UUID // Assigned at creation, immutable afterwards.
	Username     string    // Unique display and login-independent handle.
	Email        string    // Unique, used as the login identifier.
	PasswordHash string    `json:"-"` // bcrypt output, salt embedded.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the outward projection of a User. It has no credential fields.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public projects u for use outside the credential store.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}

	return &PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// RegisterUserInput carries the fields of a registration write.
// PasswordConfirmation exists only here and is never stored.
type RegisterUserInput struct {
	Username             string `json:"username" validate:"required,max=50"`
	Email                string `json:"email" validate:"required,max=254,email"`
	Password             string `json:"password" validate:"required"`
	PasswordConfirmation string `json:"passwordConfirmation"`
}
