package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"identity/config"
	"identity/internal/delivery"
	"identity/internal/delivery/http/middleware"
	"identity/internal/delivery/http/router"
	"identity/internal/delivery/http/validator"
	"identity/internal/domain/lifecycle"
	"identity/internal/errors"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

// ServerParams holds dependencies for HTTP server, injected by Fx.
type ServerParams struct {
	fx.In

	Lc              fx.Lifecycle
	Cfg             *config.Config
	Logger          *slog.Logger
	ErrorMiddleware *middleware.ErrorMiddleware
	RouterParams    router.RouterParams
}

type httpServer struct {
	cfg    *config.Config
	logger *slog.Logger
	server *echo.Echo
}

// NewServer builds the echo server and registers its shutdown hook.
func NewServer(params ServerParams) (delivery.Delivery, error) {
	srv := &httpServer{
		cfg:    params.Cfg,
		logger: params.Logger,
		server: newEcho(params),
	}

	params.Lc.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

func newEcho(params ServerParams) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// 1. Recover middleware first (to catch panics early)
	e.Use(echomiddleware.Recover())

	// 2. Request ID middleware (must be before logger to include in logs)
	e.Use(middleware.NewRequestIDMiddleware(params.Logger).Process)

	// 3. Access log
	e.Use(middleware.NewAccessLogMiddleware(params.Logger, params.Cfg))

	// 4. CORS middleware
	e.Use(echomiddleware.CORS())

	// 5. Request body size limit
	e.Use(echomiddleware.BodyLimit(params.Cfg.HTTP.MaxRequestBodySize))

	e.HTTPErrorHandler = params.ErrorMiddleware.HandleHTTPError
	e.Validator = validator.New()

	router.NewRouter(params.RouterParams).RegisterRoutes(e)

	return e
}

func (s *httpServer) Serve(ctx context.Context) error {
	hostPort := net.JoinHostPort("0.0.0.0", strconv.Itoa(s.cfg.HTTP.Port))
	s.logger.Info("Starting HTTP server", slog.String("host_port", hostPort))
	if err := s.server.Start(hostPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to serve http")
	}

	return nil
}

func (s *httpServer) stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")

	return errors.WithStack(s.server.Shutdown(shutdownCtx))
}
