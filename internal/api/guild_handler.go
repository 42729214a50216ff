package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ryanalexander/backend/internal/auth"
	"github.com/ryanalexander/backend/internal/service"
)

// GuildHandler handles guild endpoints.
type GuildHandler struct {
	service *service.GuildService
}

// NewGuildHandler creates a GuildHandler.
func NewGuildHandler(svc *service.GuildService) *GuildHandler {
	return &GuildHandler{service: svc}
}

type createGuildRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Nonce       string `json:"nonce"`
}

// CreateGuild handles POST /api/v1/guilds.
func (h *GuildHandler) CreateGuild(c echo.Context) error {
	var req createGuildRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	guild, err := h.service.CreateGuild(c.Request().Context(), auth.GetUserID(c), req.Name, req.Description, req.Nonce)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, guild)
}

// ListMyGuilds handles GET /api/v1/users/@me/guilds.
func (h *GuildHandler) ListMyGuilds(c echo.Context) error {
	guilds, err := h.service.ListMyGuilds(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, guilds)
}

// GetGuild handles GET /api/v1/guilds/:id.
func (h *GuildHandler) GetGuild(c echo.Context) error {
	guild, err := h.service.GetGuild(c.Request().Context(), c.Param("id"), auth.GetUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, guild)
}

// DeleteGuild handles DELETE /api/v1/guilds/:id. The owner deletes the guild,
// anyone else leaves it.
func (h *GuildHandler) DeleteGuild(c echo.Context) error {
	if err := h.service.DeleteOrLeaveGuild(c.Request().Context(), c.Param("id"), auth.GetUserID(c)); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
