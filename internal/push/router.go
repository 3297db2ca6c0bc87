package push

import (
	"encoding/json"
	"log/slog"

	"github.com/ashureev/skill-swap/internal/domain"
	"github.com/ashureev/skill-swap/internal/metrics"
)

// Bus carries encoded events between messaging instances.
type Bus interface {
	Publish(userID string, data []byte) error
}

// Router delivers events to a user's live channels.
type Router struct {
	registry *Registry
	bus      Bus
}

// NewRouter creates a router delivering through registry.
func NewRouter(registry *Registry) *Router {
	return &Router{registry: registry}
}

// SetBus routes events through bus so users connected to other instances
// receive them. Local delivery then happens via the bus subscription.
func (r *Router) SetBus(bus Bus) {
	r.bus = bus
}

// Route pushes an event to every channel of userID. A user without
// channels is a silent no-op. Route never blocks on a socket.
func (r *Router) Route(userID, event string, payload any) {
	data, err := json.Marshal(domain.Event{Type: event, Payload: payload})
	if err != nil {
		slog.Warn("Failed to encode push event", "user_id", userID, "event", event, "error", err)
		return
	}

	if r.bus != nil {
		err := r.bus.Publish(userID, data)
		if err == nil {
			return
		}
		slog.Warn("Push bus publish failed, delivering locally", "user_id", userID, "event", event, "error", err)
	}
	r.Deliver(userID, data)
}

// Deliver queues an encoded event on userID's local channels and returns
// how many accepted it.
func (r *Router) Deliver(userID string, data []byte) int {
	channels := r.registry.Channels(userID)
	if len(channels) == 0 {
		metrics.PushTotal.WithLabelValues("offline").Inc()
		return 0
	}

	queued := 0
	for _, ch := range channels {
		if ch.Enqueue(data) {
			queued++
			metrics.PushTotal.WithLabelValues("queued").Inc()
			continue
		}
		metrics.PushTotal.WithLabelValues("dropped").Inc()
		slog.Warn("Push dropped, channel queue full or closed", "user_id", userID, "channel_id", ch.ID)
	}
	return queued
}
