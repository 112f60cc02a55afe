package auth

import (
	"testing"
	"time"

	"identity/config"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_access_secret_key_very_long_for_testing"

func newTestConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.SecretKey.Access = secret

	return cfg
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newJWTService([]byte(testSecret), func() time.Time { return issuedAt })

	userID := uuid.New()
	token, err := svc.IssueToken(userID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, issuedAt.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, issuedAt.Add(48*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestJWTService_OnlySubjectClaim(t *testing.T) {
	svc, err := NewJWTService(newTestConfig(testSecret))
	require.NoError(t, err)

	token, err := svc.IssueToken(uuid.New())
	require.NoError(t, err)

	mapClaims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, mapClaims, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)

	keys := make([]string, 0, len(mapClaims))
	for k := range mapClaims {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"sub", "iat", "exp"}, keys)
}

func TestJWTService_WrongKey(t *testing.T) {
	issuer, err := NewJWTService(newTestConfig(testSecret))
	require.NoError(t, err)
	other, err := NewJWTService(newTestConfig("another_secret_key_entirely_different"))
	require.NoError(t, err)

	token, err := issuer.IssueToken(uuid.New())
	require.NoError(t, err)

	claims, err := other.ValidateToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_Expired(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	svc := newJWTService([]byte(testSecret), clock)

	token, err := svc.IssueToken(uuid.New())
	require.NoError(t, err)

	now = now.Add(TokenTTL + time.Minute)
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTService_RejectsOtherAlgorithms(t *testing.T) {
	svc := newJWTService([]byte(testSecret), time.Now)

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.Error(t, err)
}

func TestJWTService_InvalidToken(t *testing.T) {
	svc, err := NewJWTService(newTestConfig(testSecret))
	require.NoError(t, err)

	claims, err := svc.ValidateToken("clearly-not-a-jwt-token-format")
	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.Contains(t, err.Error(), "failed to parse token")
}

func TestJWTService_EmptySecret(t *testing.T) {
	svc, err := NewJWTService(newTestConfig(""))
	require.Error(t, err)
	assert.Nil(t, svc)
	assert.True(t, errors.Is(err, domainerrors.ErrConfiguration))
	assert.Contains(t, err.Error(), "jwt signing secret must be provided")
}

func TestJWTService_TTL(t *testing.T) {
	svc, err := NewJWTService(newTestConfig(testSecret))
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, svc.TTL())
}
