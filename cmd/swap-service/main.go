// Skill swap offer lifecycle service.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ashureev/skill-swap/internal/config"
	"github.com/ashureev/skill-swap/internal/identity"
	"github.com/ashureev/skill-swap/internal/notify"
	"github.com/ashureev/skill-swap/internal/server"
	"github.com/ashureev/skill-swap/internal/store"
	"github.com/ashureev/skill-swap/internal/swap"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load(config.SwapService)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := server.SetupLogger(cfg)

	slog.Info("Starting swap service", "port", cfg.Port, "dev", cfg.IsDevelopment())

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "path", cfg.DBPath)

	var notifier notify.Notifier = notify.Noop{}
	var relay *notify.Relay
	if cfg.MessagingServiceURL != "" {
		relay = notify.NewRelay(cfg.MessagingServiceURL, cfg.InternalToken, cfg.NotifyTimeout, logger)
		notifier = relay
		slog.Info("Notification relay enabled", "messaging_url", cfg.MessagingServiceURL)
	} else {
		slog.Info("Notification relay disabled (MESSAGING_SERVICE_URL not set)")
	}

	verifier := identity.NewVerifier(cfg.AuthServiceURL, cfg.AuthJWTSecret, cfg.AuthTimeout)
	handler := swap.NewHandler(swap.NewService(repo, notifier))

	r := server.NewRouter(cfg, repo)
	handler.RegisterRoutes(r, verifier)
	handler.RegisterInternalRoutes(r, cfg.InternalToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, r); err != nil {
		slog.Error("Server failed", "error", err)
	}

	if relay != nil {
		drainCtx, cancel := context.WithTimeout(context.Background(), cfg.NotifyTimeout)
		defer cancel()
		if err := relay.Close(drainCtx); err != nil {
			slog.Warn("Pending notifications abandoned", "error", err)
		}
	}
}
