// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "identity/internal/delivery/context"
	"identity/internal/delivery/http/response"
	"identity/internal/domain/entity"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	Token string `json:"token"`
}

// UserHandler holds dependencies for user-related handlers.
type UserHandler struct {
	uc     usecase.UserUsecase
	logger *slog.Logger
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(uc usecase.UserUsecase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		uc:     uc,
		logger: logger,
	}
}

// RegisterUser handles the user registration request.
func (h *UserHandler) RegisterUser(c echo.Context) error {
	var input entity.RegisterUserInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "Invalid registration input")
	}

	output, err := h.uc.Register(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output.User, "Welcome "+output.User.Username)
}

// Login handles the user login request.
func (h *UserHandler) Login(c echo.Context) error {
	var input usecase.LoginInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "Invalid login input")
	}

	// Missing fields get the same answer as wrong credentials.
	if err := c.Validate(&input); err != nil {
		deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger).Debug("Login input incomplete", slog.Any("error", err))

		return domainerrors.ErrInvalidCredentials.WrapMessage("login input incomplete")
	}

	output, err := h.uc.Login(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusAccepted, LoginResponse{Token: output.Token}, "Welcome Back "+output.User.Username+"!")
}

// GetProfile handles the request to get the current user's profile.
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, ok := deliverycontext.GetUserID(c)
	if !ok {
		return domainerrors.ErrUnauthorized.WrapMessage("no authenticated user on request")
	}

	profile, err := h.uc.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, profile, "Profile retrieved successfully")
}
