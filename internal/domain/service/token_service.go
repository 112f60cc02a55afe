package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the decoded payload of a session token. The subject is the only
// claim of consequence.
type Claims struct {
	UserID uuid.UUID
	jwt.RegisteredClaims
}

// TokenService mints and checks signed, expiring session tokens.
type TokenService interface {
	// IssueToken signs a token whose subject is userID.
	IssueToken(userID uuid.UUID) (string, error)

	// ValidateToken checks signature and expiry and returns the claims.
	ValidateToken(tokenString string) (*Claims, error)

	// TTL returns the fixed lifetime of issued tokens.
	TTL() time.Duration
}
