package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	mu       sync.Mutex
	requests []Request
	tokens   []string
}

func (c *capture) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		c.mu.Lock()
		c.requests = append(c.requests, req)
		c.tokens = append(c.tokens, r.Header.Get(InternalTokenHeader))
		c.mu.Unlock()
		w.WriteHeader(status)
	}
}

func (c *capture) all() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Request(nil), c.requests...)
}

func TestRelayPostsNotification(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(c.handler(http.StatusAccepted))
	defer srv.Close()

	relay := NewRelay(srv.URL, "shared", time.Second, nil)
	relay.Notify(context.Background(), "bob", "new-swap-offer", map[string]string{"offerId": "o1"})
	require.NoError(t, relay.Close(context.Background()))

	reqs := c.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "bob", reqs[0].UserID)
	assert.Equal(t, "new-swap-offer", reqs[0].Event)
	assert.JSONEq(t, `{"offerId":"o1"}`, string(reqs[0].Payload))
	assert.Equal(t, []string{"shared"}, c.tokens)
}

func TestRelaySurvivesCallerCancellation(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(c.handler(http.StatusOK))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	relay := NewRelay(srv.URL, "", time.Second, nil)
	relay.Notify(ctx, "alice", "swap-offer-updated", nil)
	cancel()

	require.NoError(t, relay.Close(context.Background()))
	assert.Len(t, c.all(), 1)
}

func TestRelayReturnsImmediatelyAndBoundsSlowCalls(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	relay := NewRelay(srv.URL, "", 50*time.Millisecond, nil)

	start := time.Now()
	relay.Notify(context.Background(), "bob", "new-swap-offer", nil)
	assert.Less(t, time.Since(start), 40*time.Millisecond, "Notify must not wait on the remote call")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, relay.Close(ctx), "attempt must finish once its timeout elapses")
}

func TestRelaySwallowsFailures(t *testing.T) {
	c := &capture{}
	failing := httptest.NewServer(c.handler(http.StatusInternalServerError))
	defer failing.Close()

	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	for _, url := range []string{failing.URL, downURL} {
		relay := NewRelay(url, "", 200*time.Millisecond, nil)
		assert.NotPanics(t, func() {
			relay.Notify(context.Background(), "bob", "new-swap-offer", nil)
		})
		require.NoError(t, relay.Close(context.Background()))
	}
	assert.Len(t, c.all(), 1, "exactly one attempt, no retry")
}

func TestEncodeRequest(t *testing.T) {
	body, err := encodeRequest("bob", "swap-offer-updated", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":"bob","event":"swap-offer-updated"}`, string(body))

	body, err = encodeRequest("bob", "swap-offer-updated", map[string]string{"status": "accepted"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":"bob","event":"swap-offer-updated","payload":{"status":"accepted"}}`, string(body))
}

func TestRelayDropsUnencodablePayload(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(c.handler(http.StatusOK))
	defer srv.Close()

	relay := NewRelay(srv.URL, "", time.Second, nil)
	relay.Notify(context.Background(), "bob", "new-swap-offer", make(chan int))
	require.NoError(t, relay.Close(context.Background()))
	assert.Empty(t, c.all())
}

func TestNoop(t *testing.T) {
	var n Notifier = Noop{}
	assert.NotPanics(t, func() { n.Notify(context.Background(), "bob", "x", nil) })
}
