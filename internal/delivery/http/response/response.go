package response

import (
	"net/http"

	deliverycontext "identity/internal/delivery/context"
	domainerrors "identity/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

// Response unified API response structure
type Response struct {
	Success bool                    `json:"success"`
	Code    int                     `json:"code"`    // HTTP status code
	Message string                  `json:"message"` // User-friendly message
	Data    any                     `json:"data,omitempty"`
	Error   *domainerrors.ErrorInfo `json:"error,omitempty"`
	Meta    *domainerrors.MetaInfo  `json:"meta,omitempty"`
}

func meta(c echo.Context) *domainerrors.MetaInfo {
	if id := deliverycontext.GetRequestID(c); id != "" {
		return &domainerrors.MetaInfo{RequestID: id}
	}

	return nil
}

// Success successful response
func Success(c echo.Context, statusCode int, data any, message string) error {
	if message == "" {
		message = "Success"
	}

	return c.JSON(statusCode, Response{
		Success: true,
		Code:    statusCode,
		Message: message,
		Data:    data,
		Meta:    meta(c),
	})
}

// Error error response
func Error(c echo.Context, statusCode int, message string, info *domainerrors.ErrorInfo) error {
	if message == "" {
		message = http.StatusText(statusCode)
	}

	return c.JSON(statusCode, Response{
		Success: false,
		Code:    statusCode,
		Message: message,
		Error:   info,
		Meta:    meta(c),
	})
}

// AppError renders a domain error.
func AppError(c echo.Context, err domainerrors.AppError) error {
	return Error(c, err.HTTPCode(), err.Message(), domainerrors.InfoFor(err))
}

// BindingError binding error response
func BindingError(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, message, &domainerrors.ErrorInfo{Code: "INVALID_INPUT"})
}

// InternalServerError 500 error
func InternalServerError(c echo.Context) error {
	return Error(c, http.StatusInternalServerError, "Internal server error, please try again later", &domainerrors.ErrorInfo{Code: "INTERNAL_ERROR"})
}
