package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/skill-swap/internal/apperr"
	"github.com/ashureev/skill-swap/internal/metrics"
)

// RemoteVerifier asks the auth service to verify a credential.
type RemoteVerifier struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
}

// NewRemoteVerifier creates a verifier for the auth service at baseURL.
func NewRemoteVerifier(baseURL string, timeout time.Duration) *RemoteVerifier {
	return &RemoteVerifier{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/auth/verify",
		client:   &http.Client{},
		timeout:  timeout,
	}
}

// Verify posts the credential to the auth service. A non-2xx answer is a
// rejection; a transport failure is reported as unavailable.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader("{}"))
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := v.client.Do(req)
	metrics.RemoteCallLatency.WithLabelValues("auth").Observe(time.Since(start).Seconds())
	if err != nil {
		slog.Warn("Auth service call failed", "error", err)
		return nil, apperr.Unavailable("auth service unavailable", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Debug("Failed to close auth response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errInvalidToken
	}

	var principal Principal
	if err := json.NewDecoder(resp.Body).Decode(&principal); err != nil {
		return nil, apperr.Unavailable("malformed auth service response", err)
	}
	if principal.UserID == "" {
		return nil, errInvalidToken
	}
	return &principal, nil
}
