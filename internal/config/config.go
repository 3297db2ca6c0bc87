// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/samber/lo"
)

// Service identifies which binary is loading configuration.
type Service string

const (
	SwapService      Service = "swap-service"
	FeedbackService  Service = "feedback-service"
	MessagingService Service = "messaging-service"
)

var defaultPorts = map[Service]string{
	SwapService:      "3003",
	MessagingService: "3004",
	FeedbackService:  "3005",
}

// Config holds all application configuration.
type Config struct {
	Service Service

	Port        string `env:"PORT"`
	DBPath      string `env:"DB_PATH"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	FrontendURL string `env:"FRONTEND_URL"`
	CORSOrigins string `env:"CORS_ORIGINS,default=*"`

	// Identity verification. AuthServiceURL wins when both are set.
	AuthServiceURL string        `env:"AUTH_SERVICE_URL"`
	AuthJWTSecret  string        `env:"AUTH_JWT_SECRET"`
	AuthTimeout    time.Duration `env:"AUTH_TIMEOUT,default=5s"`

	// Feedback gate -> swap service completion lookup.
	SwapServiceURL    string        `env:"SWAP_SERVICE_URL,default=http://swap-service:3003"`
	SwapVerifyTimeout time.Duration `env:"SWAP_VERIFY_TIMEOUT,default=3s"`

	// Swap service -> messaging service notification relay.
	MessagingServiceURL string        `env:"MESSAGING_SERVICE_URL,default=http://messaging-service:3004"`
	NotifyTimeout       time.Duration `env:"NOTIFY_TIMEOUT,default=5s"`

	// Shared secret for service-to-service endpoints. Empty disables the check.
	InternalToken string `env:"INTERNAL_TOKEN"`

	// Push delivery.
	NATSURL          string        `env:"NATS_URL"`
	PushQueueSize    int           `env:"PUSH_QUEUE_SIZE,default=64"`
	PushWriteTimeout time.Duration `env:"PUSH_WRITE_TIMEOUT,default=5s"`
}

// Load reads configuration for the given service from environment variables.
func Load(service Service) (*Config, error) {
	cfg := &Config{Service: service}
	if _, err := env.UnmarshalFromEnviron(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if cfg.Port == "" {
		cfg.Port = defaultPorts[service]
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./data/" + string(service) + ".db"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH cannot be empty")
	}
	if c.AuthServiceURL == "" && c.AuthJWTSecret == "" {
		return errors.New("one of AUTH_SERVICE_URL or AUTH_JWT_SECRET must be set")
	}
	if c.AuthTimeout <= 0 {
		return errors.New("AUTH_TIMEOUT must be > 0")
	}
	switch c.Service {
	case FeedbackService:
		if c.SwapServiceURL == "" {
			return errors.New("SWAP_SERVICE_URL cannot be empty")
		}
		if c.SwapVerifyTimeout <= 0 {
			return errors.New("SWAP_VERIFY_TIMEOUT must be > 0")
		}
	case SwapService:
		if c.NotifyTimeout <= 0 {
			return errors.New("NOTIFY_TIMEOUT must be > 0")
		}
	case MessagingService:
		if c.PushQueueSize <= 0 {
			return errors.New("PUSH_QUEUE_SIZE must be > 0")
		}
		if c.PushWriteTimeout <= 0 {
			return errors.New("PUSH_WRITE_TIMEOUT must be > 0")
		}
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	origins := lo.Map(strings.Split(c.CORSOrigins, ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	})
	return lo.Compact(origins)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
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
