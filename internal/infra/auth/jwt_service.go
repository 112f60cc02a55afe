// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"identity/config"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/service"
	"identity/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is the fixed lifetime of a session token.
const TokenTTL = 48 * time.Hour

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService is the constructor for jwtService.
// A missing signing key is a configuration error and stops the app from starting.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg == nil || cfg.SecretKey.Access == "" {
		return nil, domainerrors.ErrConfiguration.WrapMessage("jwt signing secret must be provided")
	}

	return newJWTService([]byte(cfg.SecretKey.Access), time.Now), nil
}

func newJWTService(secret []byte, now func() time.Time) *jwtService {
	return &jwtService{
		secret: secret,
		ttl:    TokenTTL,
		now:    now,
	}
}

// IssueToken signs an HS256 token carrying sub, iat and exp.
func (s *jwtService) IssueToken(userID uuid.UUID) (string, error) {
	issuedAt := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// ValidateToken checks the validity of a token string against the signing key.
func (s *jwtService) ValidateToken(tokenString string) (*service.Claims, error) {
	registered := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, registered, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token")
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	userID, err := uuid.Parse(registered.Subject)
	if err != nil {
		return nil, errors.Wrap(err, "invalid subject in token")
	}

	return &service.Claims{
		UserID:           userID,
		RegisteredClaims: *registered,
	}, nil
}

// TTL returns the fixed token lifetime.
func (s *jwtService) TTL() time.Duration {
	return s.ttl
}
