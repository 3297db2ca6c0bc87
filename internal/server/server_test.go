package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ashureev/skill-swap/internal/config"
	"github.com/stretchr/testify/assert"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestNewRouterCommonRoutes(t *testing.T) {
	cfg := &config.Config{Service: config.SwapService, CORSOrigins: "*"}

	tests := []struct {
		name string
		db   pinger
		path string
		want int
	}{
		{"heartbeat", pinger{}, "/ping", http.StatusOK},
		{"health", pinger{}, "/health", http.StatusOK},
		{"health degraded", pinger{err: errors.New("disk gone")}, "/health", http.StatusServiceUnavailable},
		{"metrics", pinger{}, "/metrics", http.StatusOK},
		{"unknown", pinger{}, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(cfg, tt.db)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := &config.Config{Port: "0"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, Run(ctx, cfg, http.NotFoundHandler()))
}
