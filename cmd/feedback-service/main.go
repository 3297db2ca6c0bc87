// Skill swap feedback service.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ashureev/skill-swap/internal/config"
	"github.com/ashureev/skill-swap/internal/feedback"
	"github.com/ashureev/skill-swap/internal/identity"
	"github.com/ashureev/skill-swap/internal/server"
	"github.com/ashureev/skill-swap/internal/store"
	"github.com/ashureev/skill-swap/internal/verify"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load(config.FeedbackService)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	server.SetupLogger(cfg)

	slog.Info("Starting feedback service", "port", cfg.Port, "swap_service", cfg.SwapServiceURL)

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

	checker := verify.NewHTTPCompletionClient(cfg.SwapServiceURL, cfg.InternalToken, cfg.SwapVerifyTimeout)
	verifier := identity.NewVerifier(cfg.AuthServiceURL, cfg.AuthJWTSecret, cfg.AuthTimeout)

	r := server.NewRouter(cfg, repo)
	feedback.NewHandler(feedback.NewService(repo, checker)).RegisterRoutes(r, verifier)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, r); err != nil {
		slog.Error("Server failed", "error", err)
	}
}
