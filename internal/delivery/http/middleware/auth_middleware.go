package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "identity/internal/delivery/context"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/service"

	"github.com/labstack/echo/v4"
)

const bearerPrefix = "Bearer "

// AuthMiddleware authenticates requests carrying a session token.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	logger   *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, logger: logger}
}

// Authenticate validates the bearer token and records its subject on the context.
// Every failure is the same 401.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return domainerrors.ErrUnauthorized.WrapMessage("authorization header is missing")
		}

		tokenString, found := strings.CutPrefix(authHeader, bearerPrefix)
		if !found || tokenString == "" {
			return domainerrors.ErrUnauthorized.WrapMessage("authorization header is not a bearer token")
		}

		claims, err := m.tokenSvc.ValidateToken(tokenString)
		if err != nil {
			deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).Debug("Rejected bearer token", slog.Any("error", err))

			return domainerrors.ErrUnauthorized.WrapMessage("invalid or expired token")
		}

		deliverycontext.SetUserID(c, claims.UserID)

		return next(c)
	}
}
