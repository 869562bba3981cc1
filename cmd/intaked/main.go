package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/carebridge-health/intake/internal/api"
	"github.com/carebridge-health/intake/internal/auth"
	"github.com/carebridge-health/intake/internal/config"
	"github.com/carebridge-health/intake/internal/events"
	"github.com/carebridge-health/intake/internal/intake"
	"github.com/carebridge-health/intake/internal/llm"
	"github.com/carebridge-health/intake/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("intaked starting", "port", cfg.Port)

	ctx := context.Background()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected")

	// Language model client
	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	model := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.ChatModel, cfg.OpenAIBaseURL)
	slog.Info("model client ready", "model", cfg.ChatModel)

	// Token validation
	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	validator := auth.NewValidator(cfg.JWTSecret)

	// Events (optional — the service runs without a broker, just no
	// downstream notifications)
	var publisher intake.Publisher
	if cfg.NatsURL != "" {
		pub, err := events.Connect(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		publisher = pub
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured — running without events")
	}

	svc := intake.NewService(db, model, publisher, slog.Default())

	srv := api.NewServer(cfg.Port, svc, validator, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("intaked ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	slog.Info("intaked stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
