// Package notify relays workflow notifications to the messaging service.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/skill-swap/internal/api"
	"github.com/ashureev/skill-swap/internal/metrics"
)

// InternalTokenHeader authenticates service-to-service calls.
const InternalTokenHeader = api.InternalTokenHeader

// Notifier delivers a best-effort notification. Implementations never
// block the caller and never report failure.
type Notifier interface {
	Notify(ctx context.Context, userID, event string, payload any)
}

// Request is the body accepted by the messaging service's notify endpoint.
type Request struct {
	UserID  string          `json:"userId"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Relay posts notifications to the messaging service from a detached
// goroutine. Each attempt is made once and bounded by timeout.
type Relay struct {
	endpoint string
	token    string
	client   *http.Client
	timeout  time.Duration
	logger   *slog.Logger
	inflight sync.WaitGroup
}

// NewRelay creates a relay to the messaging service at baseURL.
func NewRelay(baseURL, internalToken string, timeout time.Duration, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/notify",
		token:    internalToken,
		client:   &http.Client{},
		timeout:  timeout,
		logger:   logger,
	}
}

// Notify returns immediately. The attempt outlives the caller's request:
// cancellation of ctx does not abort it, only the relay timeout does.
func (r *Relay) Notify(ctx context.Context, userID, event string, payload any) {
	body, err := encodeRequest(userID, event, payload)
	if err != nil {
		r.logger.Warn("Notification encode failed (non-fatal)", "user_id", userID, "event", event, "error", err)
		metrics.RelayTotal.WithLabelValues("failed").Inc()
		return
	}

	detached := context.WithoutCancel(ctx)
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()

		attemptCtx, cancel := context.WithTimeout(detached, r.timeout)
		defer cancel()

		if err := r.send(attemptCtx, body); err != nil {
			r.logger.Warn("Notification relay failed (non-fatal)", "user_id", userID, "event", event, "error", err)
			metrics.RelayTotal.WithLabelValues("failed").Inc()
			return
		}
		metrics.RelayTotal.WithLabelValues("ok").Inc()
	}()
}

func encodeRequest(userID, event string, payload any) ([]byte, error) {
	req := Request{UserID: userID, Event: event}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		req.Payload = raw
	}
	return json.Marshal(req)
}

func (r *Relay) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set(InternalTokenHeader, r.token)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	metrics.RemoteCallLatency.WithLabelValues("messaging").Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("post notify: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			r.logger.Debug("Failed to close notify response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("messaging service returned %d", resp.StatusCode)
	}
	return nil
}

// Close waits for in-flight attempts or until ctx is done.
func (r *Relay) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Noop discards notifications.
type Noop struct{}

// Notify does nothing.
func (Noop) Notify(context.Context, string, string, any) {}
