package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/skill-swap/internal/api"
	"github.com/ashureev/skill-swap/internal/domain"
	"github.com/ashureev/skill-swap/internal/identity"
	"github.com/ashureev/skill-swap/internal/notify"
	"github.com/ashureev/skill-swap/internal/push"
	"github.com/ashureev/skill-swap/internal/store"
	"github.com/ashureev/skill-swap/internal/swap"
	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type messagingServer struct {
	srv      *httptest.Server
	registry *push.Registry
	verifier *identity.JWTVerifier
}

func newMessagingServer(t *testing.T) *messagingServer {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "messages.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	verifier := identity.NewJWTVerifier("messaging-secret")
	registry := push.NewRegistry()
	svc := NewService(repo, push.NewRouter(registry))

	r := chi.NewRouter()
	h := NewHandler(svc)
	h.RegisterRoutes(r, verifier)
	h.RegisterInternalRoutes(r, "shared")
	r.Get("/ws", push.NewHandler(registry, verifier, push.HandlerConfig{IsDev: true}).ServeHTTP)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Cleanup(registry.CloseAll)
	return &messagingServer{srv: srv, registry: registry, verifier: verifier}
}

func (s *messagingServer) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := s.verifier.IssueToken(userID, time.Minute)
	require.NoError(t, err)
	return token
}

func (s *messagingServer) do(t *testing.T, method, path, userID string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.srv.URL+path, &buf)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(t, userID))
	}
	resp, err := s.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *messagingServer) dial(t *testing.T, ctx context.Context, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/ws?token=" + s.token(t, userID)
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	require.Eventually(t, func() bool { return s.registry.Connected(userID) }, time.Second, 10*time.Millisecond)
	return conn
}

type pushedEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn) pushedEvent {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var evt pushedEvent
	require.NoError(t, json.Unmarshal(data, &evt))
	return evt
}

func TestSendPushesToRecipient(t *testing.T) {
	s := newMessagingServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	conn := s.dial(t, ctx, "bob")

	resp := s.do(t, http.MethodPost, "/api/messages/", "alice", SendInput{Recipient: "bob", Content: "lesson at 6?"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sent domain.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sent))

	evt := readEvent(t, ctx, conn)
	assert.Equal(t, domain.EventNewMessage, evt.Event)
	var pushed domain.Message
	require.NoError(t, json.Unmarshal(evt.Payload, &pushed))
	assert.Equal(t, sent.ID, pushed.ID)
	assert.Equal(t, "lesson at 6?", pushed.Content)
}

func TestSendToOfflineRecipientStillStored(t *testing.T) {
	s := newMessagingServer(t)

	resp := s.do(t, http.MethodPost, "/api/messages/", "alice", SendInput{Recipient: "bob", Content: "are you there"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/messages/conversation/alice?limit=10", "bob", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var conv []domain.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&conv))
	require.Len(t, conv, 1)
	assert.False(t, conv[0].Read)

	resp = s.do(t, http.MethodPatch, "/api/messages/read/alice", "bob", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var marked map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&marked))
	assert.EqualValues(t, 1, marked["updated"])

	resp = s.do(t, http.MethodGet, "/api/messages/conversation/alice?limit=abc", "bob", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/messages/conversation/alice", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNotifyEndpointRequiresInternalToken(t *testing.T) {
	s := newMessagingServer(t)

	body := strings.NewReader(`{"userId":"bob","event":"new-swap-offer"}`)
	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/api/notify", body)
	require.NoError(t, err)
	resp, err := s.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// TestSwapOfferReachesRecipientSocket wires a swap service through the
// notification relay into this service's push channels.
func TestSwapOfferReachesRecipientSocket(t *testing.T) {
	s := newMessagingServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	bob := s.dial(t, ctx, "bob")
	alice := s.dial(t, ctx, "alice")

	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "swaps.db"))
	require.NoError(t, err)
	defer repo.Close()

	relay := notify.NewRelay(s.srv.URL, "shared", time.Second, nil)
	swaps := swap.NewService(repo, relay)

	offer, err := swaps.Create(ctx, "alice", swap.CreateInput{
		OfferedTo:      "bob",
		OfferedSkill:   domain.Skill{Name: "pottery"},
		RequestedSkill: domain.Skill{Name: "chess"},
	})
	require.NoError(t, err)

	evt := readEvent(t, ctx, bob)
	assert.Equal(t, domain.EventNewSwapOffer, evt.Event)
	assert.JSONEq(t, `{"offerId":"`+offer.ID+`","offeredBy":"alice"}`, string(evt.Payload))

	_, err = swaps.UpdateStatus(ctx, offer.ID, domain.SwapAccepted, "bob")
	require.NoError(t, err)

	evt = readEvent(t, ctx, alice)
	assert.Equal(t, domain.EventSwapOfferUpdated, evt.Event)
	assert.JSONEq(t, `{"offerId":"`+offer.ID+`","status":"accepted"}`, string(evt.Payload))

	require.NoError(t, relay.Close(ctx))
}

func TestRelayedNotifyPayloadPassesThrough(t *testing.T) {
	s := newMessagingServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	conn := s.dial(t, ctx, "carol")

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/api/notify",
		strings.NewReader(`{"userId":"carol","event":"custom","payload":{"n":1}}`))
	require.NoError(t, err)
	req.Header.Set(api.InternalTokenHeader, "shared")
	resp, err := s.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	evt := readEvent(t, ctx, conn)
	assert.Equal(t, "custom", evt.Event)
	assert.JSONEq(t, `{"n":1}`, string(evt.Payload))
}
