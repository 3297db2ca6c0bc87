package identity

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

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws?token=query-token", nil)
	assert.Equal(t, "query-token", TokenFromRequest(req))

	req.Header.Set("Authorization", "Bearer header-token")
	assert.Equal(t, "header-token", TokenFromRequest(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "", TokenFromRequest(req))
}

func TestJWTVerifierRoundTrip(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token, err := v.IssueToken("alice", time.Minute)
	require.NoError(t, err)

	principal, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice", principal.UserID)
}

func TestJWTVerifierRejects(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	other := NewJWTVerifier("other-secret")

	foreign, err := other.IssueToken("alice", time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), foreign)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	expired, err := v.IssueToken("alice", -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), expired)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	_, err = v.Verify(context.Background(), "not-a-jwt")
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestRemoteVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/verify", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"userId": "bob"})
	}))
	defer srv.Close()

	v := NewRemoteVerifier(srv.URL+"/", time.Second)

	principal, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "bob", principal.UserID)

	_, err = v.Verify(context.Background(), "bad")
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestRemoteVerifierUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewRemoteVerifier(url, 200*time.Millisecond).Verify(context.Background(), "good")
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestMiddleware(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	token, err := v.IssueToken("carol", time.Minute)
	require.NoError(t, err)

	var seen string
	h := Middleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/x", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "carol", seen)
}
