package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	MongoURI   string
	MongoDB    string
	RedisURL   string
	JWTSecret  string
	ServerAddr string
	LogLevel   slog.Level
}

func Load() *Config {
	cfg := &Config{
		MongoURI:   os.Getenv("MONGO_URI"),
		MongoDB:    envOrDefault("MONGO_DB", "backend"),
		RedisURL:   envOrDefault("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		ServerAddr: envOrDefault("SERVER_ADDR", ":8080"),
		LogLevel:   parseLogLevel(os.Getenv("LOG_LEVEL")),
	}

	var missing []string
	if cfg.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		panic(fmt.Sprintf("required environment variables not set: %s", strings.Join(missing, ", ")))
	}

	return cfg
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
