package usecase

import (
	"context"

	"identity/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user's public information.
type RegisterOutput struct {
	User *entity.PublicUser
}

// LoginOutput carries the issued session token and who it was issued to.
type LoginOutput struct {
	Token string
	User  *entity.PublicUser
}

// UserUsecase defines the interface for user-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type UserUsecase interface {
	Register(ctx context.Context, input *entity.RegisterUserInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.PublicUser, error)
}
