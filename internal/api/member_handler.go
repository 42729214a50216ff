package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ryanalexander/backend/internal/auth"
	"github.com/ryanalexander/backend/internal/service"
)

// MemberHandler handles member, kick and ban endpoints.
type MemberHandler struct {
	service *service.MemberService
}

// NewMemberHandler creates a MemberHandler.
func NewMemberHandler(svc *service.MemberService) *MemberHandler {
	return &MemberHandler{service: svc}
}

// ListMembers handles GET /api/v1/guilds/:id/members.
func (h *MemberHandler) ListMembers(c echo.Context) error {
	members, err := h.service.ListMembers(c.Request().Context(), c.Param("id"), auth.GetUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, members)
}

// GetMember handles GET /api/v1/guilds/:id/members/:user_id.
func (h *MemberHandler) GetMember(c echo.Context) error {
	member, err := h.service.GetMember(c.Request().Context(), c.Param("id"), auth.GetUserID(c), c.Param("user_id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, member)
}

// KickMember handles DELETE /api/v1/guilds/:id/members/:user_id.
func (h *MemberHandler) KickMember(c echo.Context) error {
	if err := h.service.KickMember(c.Request().Context(), c.Param("id"), auth.GetUserID(c), c.Param("user_id")); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type banRequest struct {
	Reason string `json:"reason"`
}

// BanMember handles PUT /api/v1/guilds/:id/bans/:user_id.
func (h *MemberHandler) BanMember(c echo.Context) error {
	var req banRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	if err := h.service.BanMember(c.Request().Context(), c.Param("id"), auth.GetUserID(c), c.Param("user_id"), req.Reason); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UnbanMember handles DELETE /api/v1/guilds/:id/bans/:user_id.
func (h *MemberHandler) UnbanMember(c echo.Context) error {
	if err := h.service.UnbanMember(c.Request().Context(), c.Param("id"), auth.GetUserID(c), c.Param("user_id")); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
