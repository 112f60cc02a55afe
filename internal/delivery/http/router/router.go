// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"identity/internal/delivery/http/middleware"
	"identity/internal/delivery/http/router/handler"
	"identity/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler    *handler.UserHandler
	AuthMiddleware *middleware.AuthMiddleware
	Metrics        *metrics.Metrics
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler    *handler.UserHandler
	authMiddleware *middleware.AuthMiddleware
	metrics        *metrics.Metrics
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:    params.UserHandler,
		authMiddleware: params.AuthMiddleware,
		metrics:        params.Metrics,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(r.metrics.Handler()))

	e.POST("/register", r.userHandler.RegisterUser)
	e.POST("/login", r.userHandler.Login)

	// Routes that require a session token
	userGroup := e.Group("/users")
	userGroup.Use(r.authMiddleware.Authenticate)
	{
		userGroup.GET("/me", r.userHandler.GetProfile)
	}
}
