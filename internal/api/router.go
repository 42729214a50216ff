package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ryanalexander/backend/internal/auth"
	"github.com/ryanalexander/backend/internal/gateway"
	"github.com/ryanalexander/backend/internal/redis"
)

// Dependencies holds all handler instances and middleware for route wiring.
type Dependencies struct {
	Auth     *AuthHandler
	Guilds   *GuildHandler
	Channels *ChannelHandler
	Members  *MemberHandler
	Invites  *InviteHandler
	Users    *UserHandler
	Gateway  *gateway.Manager

	TokenService *auth.TokenService
	Redis        *redis.Client
}

// SetupRouter registers all API routes on the Echo instance.
func SetupRouter(e *echo.Echo, deps *Dependencies) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// WebSocket gateway
	e.GET("/gateway", deps.Gateway.HandleWebSocket)

	v1 := e.Group("/api/v1")

	// Auth routes: no auth middleware, stricter rate limit
	authGroup := v1.Group("/auth",
		RateLimitMiddleware(deps.Redis, 5, time.Minute),
	)
	authGroup.POST("/register", deps.Auth.Register)
	authGroup.POST("/login", deps.Auth.Login)
	authGroup.POST("/refresh", deps.Auth.Refresh)

	// Public invite info, no auth required
	v1.GET("/invites/:code", deps.Invites.GetInvite)

	// Protected routes: JWT auth + general rate limit
	authMw := deps.TokenService.Middleware()
	protected := v1.Group("", authMw,
		RateLimitMiddleware(deps.Redis, 50, time.Minute),
	)

	// Auth (protected)
	protected.POST("/auth/logout", deps.Auth.Logout)

	// Users
	protected.GET("/users/@me", deps.Users.GetMe)
	protected.GET("/users/@me/guilds", deps.Guilds.ListMyGuilds)

	// Guilds
	protected.POST("/guilds", deps.Guilds.CreateGuild)
	protected.GET("/guilds/:id", deps.Guilds.GetGuild)
	protected.DELETE("/guilds/:id", deps.Guilds.DeleteGuild)

	// Channels
	protected.POST("/guilds/:id/channels", deps.Channels.CreateChannel)
	protected.GET("/guilds/:id/channels", deps.Channels.ListGuildChannels)
	protected.GET("/channels", deps.Channels.GetChannels)
	protected.GET("/channels/:id", deps.Channels.GetChannel)

	// Members
	protected.GET("/guilds/:id/members", deps.Members.ListMembers)
	protected.GET("/guilds/:id/members/:user_id", deps.Members.GetMember)
	protected.DELETE("/guilds/:id/members/:user_id", deps.Members.KickMember)

	// Bans
	protected.PUT("/guilds/:id/bans/:user_id", deps.Members.BanMember)
	protected.DELETE("/guilds/:id/bans/:user_id", deps.Members.UnbanMember)

	// Invites (protected)
	protected.POST("/guilds/:id/invites", deps.Invites.CreateInvite)
	protected.GET("/guilds/:id/invites", deps.Invites.ListInvites)
	protected.POST("/invites/:code", deps.Invites.AcceptInvite)
	protected.DELETE("/invites/:code", deps.Invites.RevokeInvite)
}
