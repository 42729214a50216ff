package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ryanalexander/backend/internal/auth"
	"github.com/ryanalexander/backend/internal/store"
)

// UserHandler handles user endpoints.
type UserHandler struct {
	users store.UserRepository
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users store.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// GetMe handles GET /api/v1/users/@me.
func (h *UserHandler) GetMe(c echo.Context) error {
	user, err := h.users.GetByID(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
	if user == nil {
		return Error(c, http.StatusNotFound, "NOT_FOUND", "user not found")
	}
	return c.JSON(http.StatusOK, user)
}
