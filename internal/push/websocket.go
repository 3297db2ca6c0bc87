package push

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/skill-swap/internal/api"
	"github.com/ashureev/skill-swap/internal/identity"
	"github.com/coder/websocket"
)

// HandlerConfig tunes accepted connections.
type HandlerConfig struct {
	AllowedOrigin string
	IsDev         bool
	QueueSize     int
	WriteTimeout  time.Duration
}

// Handler upgrades authenticated requests to push channels.
type Handler struct {
	registry *Registry
	verifier identity.Verifier
	cfg      HandlerConfig
}

// NewHandler creates a new WebSocket handler.
func NewHandler(registry *Registry, verifier identity.Verifier, cfg HandlerConfig) *Handler {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Handler{registry: registry, verifier: verifier, cfg: cfg}
}

// wsSink adapts websocket.Conn to Sink.
type wsSink struct {
	conn *websocket.Conn
}

func (s *wsSink) Write(ctx context.Context, data []byte) error {
	return s.conn.Write(ctx, websocket.MessageText, data)
}

func (s *wsSink) Close(reason string) error {
	return s.conn.Close(websocket.StatusNormalClosure, reason)
}

// clientMessage is the only inbound frame shape the server reacts to.
type clientMessage struct {
	Type string `json:"type"`
}

var pongFrame = []byte(`{"event":"pong"}`)

// ServeHTTP authenticates the handshake, then registers the connection
// until the client goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	principal, err := identity.Authenticate(r, h.verifier)
	if err != nil {
		slog.Warn("Push handshake rejected", "ip", identity.IPFromRequest(r), "error", err)
		api.WriteError(w, r, err)
		return
	}
	userID := principal.UserID

	if !h.checkOrigin(r) {
		api.Error(w, http.StatusForbidden, "origin not allowed")
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}

	ch := NewChannel(userID, &wsSink{conn: ws}, h.cfg.QueueSize, h.cfg.WriteTimeout)
	h.registry.Register(ch)
	defer func() {
		h.registry.Unregister(ch)
		ch.Close("session ended")
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		ch.Run(ctx)
	}()

	h.readLoop(ctx, ws, ch)
}

func (h *Handler) readLoop(ctx context.Context, ws *websocket.Conn, ch *Channel) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || ctx.Err() != nil {
				slog.Debug("Push channel closed", "user_id", ch.UserID, "channel_id", ch.ID)
			} else {
				slog.Warn("WebSocket read error", "error", err, "user_id", ch.UserID)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			ch.Enqueue(pongFrame)
		}
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.cfg.IsDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.cfg.AllowedOrigin == "*" {
		return true
	}
	if origin == h.cfg.AllowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.cfg.AllowedOrigin)
	return false
}
