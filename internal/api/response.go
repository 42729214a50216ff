package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ryanalexander/backend/internal/service"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error sends a JSON error response.
func Error(c echo.Context, status int, code, message string) error {
	return c.JSON(status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

// mapServiceError translates service-layer errors into HTTP responses. A
// CascadeError is logged with its operation and step so a partial write is
// traceable, but the client only sees an internal error.
func mapServiceError(c echo.Context, err error) error {
	var cerr *service.CascadeError
	if errors.As(err, &cerr) {
		slog.Error("cascade step failed",
			"op", cerr.Op,
			"step", cerr.Step,
			"error", cerr.Err,
		)
		return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}

	code, message := "INTERNAL", "internal server error"
	var serr *service.ServiceError
	if errors.As(err, &serr) {
		code, message = serr.Code, serr.Message
	}

	switch {
	case errors.Is(err, service.ErrBadRequest):
		return Error(c, http.StatusBadRequest, code, message)
	case errors.Is(err, service.ErrUnauthorized):
		return Error(c, http.StatusUnauthorized, code, message)
	case errors.Is(err, service.ErrForbidden):
		return Error(c, http.StatusForbidden, code, message)
	case errors.Is(err, service.ErrNotFound):
		return Error(c, http.StatusNotFound, code, message)
	case errors.Is(err, service.ErrConflict):
		return Error(c, http.StatusConflict, code, message)
	default:
		slog.Error("unhandled service error", "error", err)
		return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}
