package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ryanalexander/backend/internal/auth"
	"github.com/ryanalexander/backend/internal/service"
)

// InviteHandler handles invite endpoints.
type InviteHandler struct {
	service *service.InviteService
}

// NewInviteHandler creates an InviteHandler.
func NewInviteHandler(svc *service.InviteService) *InviteHandler {
	return &InviteHandler{service: svc}
}

type createInviteRequest struct {
	ChannelID string `json:"channel"`
}

// CreateInvite handles POST /api/v1/guilds/:id/invites.
func (h *InviteHandler) CreateInvite(c echo.Context) error {
	var req createInviteRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	invite, err := h.service.CreateInvite(c.Request().Context(), c.Param("id"), req.ChannelID, auth.GetUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, invite)
}

// ListInvites handles GET /api/v1/guilds/:id/invites.
func (h *InviteHandler) ListInvites(c echo.Context) error {
	invites, err := h.service.ListInvites(c.Request().Context(), c.Param("id"), auth.GetUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, invites)
}

// GetInvite handles GET /api/v1/invites/:code. It is unauthenticated; the
// response names the guild and channel the code leads to, nothing more.
func (h *InviteHandler) GetInvite(c echo.Context) error {
	info, err := h.service.ResolveInvite(c.Request().Context(), c.Param("code"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

// AcceptInvite handles POST /api/v1/invites/:code.
func (h *InviteHandler) AcceptInvite(c echo.Context) error {
	result, err := h.service.JoinViaInvite(c.Request().Context(), c.Param("code"), auth.GetUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// RevokeInvite handles DELETE /api/v1/invites/:code.
func (h *InviteHandler) RevokeInvite(c echo.Context) error {
	if err := h.service.DeleteInvite(c.Request().Context(), c.Param("code"), auth.GetUserID(c)); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
