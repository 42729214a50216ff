package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ryanalexander/backend/internal/api"
	"github.com/ryanalexander/backend/internal/auth"
	"github.com/ryanalexander/backend/internal/cache"
	"github.com/ryanalexander/backend/internal/config"
	"github.com/ryanalexander/backend/internal/gateway"
	redisclient "github.com/ryanalexander/backend/internal/redis"
	"github.com/ryanalexander/backend/internal/service"
	"github.com/ryanalexander/backend/internal/store"
	"github.com/ryanalexander/backend/internal/ulid"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	// --- Infrastructure ---

	client, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("mongodb: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("mongodb indexes: %v", err)
	}

	rdb, err := redisclient.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	ids := ulid.NewGenerator()
	tokenSvc := auth.NewTokenService(cfg.JWTSecret)

	// --- Repositories ---

	users := store.NewUserRepository(db)
	guilds := store.NewGuildRepository(db)
	channels := store.NewChannelRepository(db)
	members := store.NewMemberRepository(db)
	messages := store.NewMessageRepository(db)

	channelCache := cache.New(cache.DefaultCapacity, channels)

	// --- Gateway ---

	gwManager := gateway.NewManager(tokenSvc, members, rdb)
	go gwManager.Run(ctx)

	// --- Services ---

	perms := service.NewPermissionChecker(guilds, members)
	authSvc := service.NewAuthService(users, tokenSvc, rdb, ids)
	guildSvc := service.NewGuildService(guilds, channels, members, messages, channelCache, ids, gwManager, perms)
	channelSvc := service.NewChannelService(channels, guilds, channelCache, ids, gwManager, perms)
	memberSvc := service.NewMemberService(guilds, members, gwManager, perms)
	inviteSvc := service.NewInviteService(guilds, members, channelCache, gwManager, perms)

	// --- Handlers ---

	deps := &api.Dependencies{
		Auth:         api.NewAuthHandler(authSvc),
		Guilds:       api.NewGuildHandler(guildSvc),
		Channels:     api.NewChannelHandler(channelSvc),
		Members:      api.NewMemberHandler(memberSvc),
		Invites:      api.NewInviteHandler(inviteSvc),
		Users:        api.NewUserHandler(users),
		Gateway:      gwManager,
		TokenService: tokenSvc,
		Redis:        rdb,
	}

	// --- Echo ---

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.SetupRouter(e, deps)

	// --- Start ---

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("backend starting on %s", cfg.ServerAddr)
		if err := e.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-sigCtx.Done()
	log.Println("shutting down...")
	if err := e.Shutdown(context.Background()); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
