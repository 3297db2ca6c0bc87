package verify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ashureev/skill-swap/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, answers map[string]bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /internal/swaps/{id}/completion", func(w http.ResponseWriter, r *http.Request) {
		completed, ok := answers[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(CompletionResponse{Completed: completed})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestIsCompleted(t *testing.T) {
	srv := completionServer(t, map[string]bool{"done": true, "open": false})
	c := NewHTTPCompletionClient(srv.URL, "", time.Second)

	ok, err := c.IsCompleted(context.Background(), "done")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsCompleted(context.Background(), "open")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsCompletedUnknownOfferIsNotVerified(t *testing.T) {
	srv := completionServer(t, nil)
	c := NewHTTPCompletionClient(srv.URL, "", time.Second)

	ok, err := c.IsCompleted(context.Background(), "missing")
	assert.False(t, ok)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestIsCompletedTimeoutIsNotVerified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewHTTPCompletionClient(srv.URL, "", 30*time.Millisecond)

	start := time.Now()
	ok, err := c.IsCompleted(context.Background(), "slow")
	assert.False(t, ok)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
	assert.Less(t, time.Since(start), time.Second)
}

func TestIsCompletedSendsInternalToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Internal-Token")
		_ = json.NewEncoder(w).Encode(CompletionResponse{Completed: true})
	}))
	defer srv.Close()

	_, err := NewHTTPCompletionClient(srv.URL+"/", "shared", time.Second).IsCompleted(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "shared", got)
}
