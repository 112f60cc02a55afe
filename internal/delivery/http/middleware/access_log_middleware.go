package middleware

import (
	"log/slog"

	"identity/config"

	"github.com/labstack/echo/v4"
	slogecho "github.com/samber/slog-echo"
)

// NewAccessLogMiddleware logs one line per request through slog-echo. Request
// bodies are never logged since they carry passwords. Health and metrics endpoints are skipped.
func NewAccessLogMiddleware(logger *slog.Logger, cfg *config.Config) echo.MiddlewareFunc {
	return slogecho.NewWithConfig(logger, slogecho.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
		WithUserAgent:    cfg.Env.Debug,
		WithRequestBody:  false,
		WithResponseBody: false,
		Filters: []slogecho.Filter{
			slogecho.IgnorePath("/health", "/metrics"),
		},
	})
}
