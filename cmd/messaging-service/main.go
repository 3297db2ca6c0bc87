// Skill swap messaging and push service.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ashureev/skill-swap/internal/config"
	"github.com/ashureev/skill-swap/internal/identity"
	"github.com/ashureev/skill-swap/internal/messaging"
	"github.com/ashureev/skill-swap/internal/push"
	"github.com/ashureev/skill-swap/internal/server"
	"github.com/ashureev/skill-swap/internal/store"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load(config.MessagingService)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	server.SetupLogger(cfg)

	slog.Info("Starting messaging service", "port", cfg.Port, "dev", cfg.IsDevelopment())

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

	registry := push.NewRegistry()
	defer registry.CloseAll()
	router := push.NewRouter(registry)

	// Without NATS, events only reach channels held by this instance.
	if cfg.NATSURL != "" {
		bus, err := push.NewNATSBus(cfg.NATSURL, string(cfg.Service))
		if err != nil {
			slog.Error("Failed to connect push bus", "error", err)
			os.Exit(1)
		}
		defer bus.Close()

		if err := bus.Subscribe(func(userID string, data []byte) {
			router.Deliver(userID, data)
		}); err != nil {
			slog.Error("Failed to subscribe push bus", "error", err)
			os.Exit(1)
		}
		router.SetBus(bus)
	} else {
		slog.Info("Push bus disabled (NATS_URL not set), delivering locally")
	}

	verifier := identity.NewVerifier(cfg.AuthServiceURL, cfg.AuthJWTSecret, cfg.AuthTimeout)
	handler := messaging.NewHandler(messaging.NewService(repo, router))
	wsHandler := push.NewHandler(registry, verifier, push.HandlerConfig{
		AllowedOrigin: cfg.FrontendURL,
		IsDev:         cfg.IsDevelopment(),
		QueueSize:     cfg.PushQueueSize,
		WriteTimeout:  cfg.PushWriteTimeout,
	})

	r := server.NewRouter(cfg, repo)
	handler.RegisterRoutes(r, verifier)
	handler.RegisterInternalRoutes(r, cfg.InternalToken)
	r.Get("/ws", wsHandler.ServeHTTP)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, r); err != nil {
		slog.Error("Server failed", "error", err)
	}
}
