package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ryanalexander/backend/internal/auth"
	"github.com/ryanalexander/backend/internal/service"
)

// channel ids per bulk fetch request
const maxBulkChannels = 100

// ChannelHandler handles channel endpoints.
type ChannelHandler struct {
	service *service.ChannelService
}

// NewChannelHandler creates a ChannelHandler.
func NewChannelHandler(svc *service.ChannelService) *ChannelHandler {
	return &ChannelHandler{service: svc}
}

type createChannelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Nonce       string `json:"nonce"`
}

// CreateChannel handles POST /api/v1/guilds/:id/channels.
func (h *ChannelHandler) CreateChannel(c echo.Context) error {
	var req createChannelRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	channel, err := h.service.CreateChannel(c.Request().Context(), c.Param("id"), auth.GetUserID(c), req.Name, req.Description, req.Nonce)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, channel)
}

// ListGuildChannels handles GET /api/v1/guilds/:id/channels.
func (h *ChannelHandler) ListGuildChannels(c echo.Context) error {
	channels, err := h.service.FetchGuildChannels(c.Request().Context(), c.Param("id"), auth.GetUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, channels)
}

// GetChannel handles GET /api/v1/channels/:id.
func (h *ChannelHandler) GetChannel(c echo.Context) error {
	channel, err := h.service.FetchChannel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, channel)
}

// GetChannels handles the bulk fetch, GET /api/v1/channels?ids=a,b,c.
// Missing ids are silently dropped from the result.
func (h *ChannelHandler) GetChannels(c echo.Context) error {
	raw := c.QueryParam("ids")
	if raw == "" {
		return Error(c, http.StatusBadRequest, "MISSING_IDS", "ids query parameter is required")
	}
	ids := strings.Split(raw, ",")
	if len(ids) > maxBulkChannels {
		return Error(c, http.StatusBadRequest, "TOO_MANY_IDS", "too many channel ids in one request")
	}

	channels, err := h.service.FetchChannels(c.Request().Context(), ids)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, channels)
}
