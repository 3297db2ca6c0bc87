// Package verify asks the swap service whether a swap has completed.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ashureev/skill-swap/internal/api"
	"github.com/ashureev/skill-swap/internal/apperr"
	"github.com/ashureev/skill-swap/internal/metrics"
)

// CompletionResponse is the swap service's answer.
type CompletionResponse struct {
	Completed bool `json:"completed"`
}

// HTTPCompletionClient calls the swap service's internal completion endpoint.
type HTTPCompletionClient struct {
	baseURL string
	token   string
	client  *http.Client
	timeout time.Duration
}

// NewHTTPCompletionClient creates a client for the swap service at baseURL.
func NewHTTPCompletionClient(baseURL, internalToken string, timeout time.Duration) *HTTPCompletionClient {
	return &HTTPCompletionClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   internalToken,
		client:  &http.Client{},
		timeout: timeout,
	}
}

// IsCompleted returns true only when the swap service positively reports
// completion. Every failure, including a timeout, returns false with an
// unavailable error.
func (c *HTTPCompletionClient) IsCompleted(ctx context.Context, swapOfferID string) (bool, error) {
	completed, err := c.check(ctx, swapOfferID)
	switch {
	case err != nil:
		metrics.VerificationTotal.WithLabelValues("error").Inc()
		slog.Warn("Swap completion check failed", "offer_id", swapOfferID, "error", err)
		return false, apperr.Unavailable("swap verification unavailable", err)
	case completed:
		metrics.VerificationTotal.WithLabelValues("completed").Inc()
	default:
		metrics.VerificationTotal.WithLabelValues("not_completed").Inc()
	}
	return completed, nil
}

func (c *HTTPCompletionClient) check(ctx context.Context, swapOfferID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/internal/swaps/" + url.PathEscape(swapOfferID) + "/completion"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build completion request: %w", err)
	}
	if c.token != "" {
		req.Header.Set(api.InternalTokenHeader, c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.RemoteCallLatency.WithLabelValues("swap").Observe(time.Since(start).Seconds())
	if err != nil {
		return false, fmt.Errorf("get completion: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Debug("Failed to close completion response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("swap service returned %d", resp.StatusCode)
	}

	var body CompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode completion response: %w", err)
	}
	return body.Completed, nil
}
