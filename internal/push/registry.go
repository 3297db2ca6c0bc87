// Package push tracks live per-user connections and fans events out to them.
package push

import (
	"log/slog"
	"sync"

	"github.com/ashureev/skill-swap/internal/metrics"
)

// Registry maps each connected user to the set of their live channels.
// A user with no channels has no entry.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]map[string]*Channel
	total    int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]map[string]*Channel),
	}
}

// Register adds ch to its user's channel set.
func (r *Registry) Register(ch *Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, exists := r.channels[ch.UserID]
	if !exists {
		set = make(map[string]*Channel)
		r.channels[ch.UserID] = set
	}
	if _, dup := set[ch.ID]; dup {
		return
	}
	set[ch.ID] = ch
	r.total++
	r.reportLocked()
	slog.Info("Push channel registered", "user_id", ch.UserID, "channel_id", ch.ID, "user_channels", len(set))
}

// Unregister removes ch. The user's entry is dropped with its last channel.
func (r *Registry) Unregister(ch *Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.channels[ch.UserID]
	if !ok {
		return
	}
	if current, exists := set[ch.ID]; !exists || current != ch {
		return
	}
	delete(set, ch.ID)
	r.total--
	if len(set) == 0 {
		delete(r.channels, ch.UserID)
	}
	r.reportLocked()
	slog.Info("Push channel unregistered", "user_id", ch.UserID, "channel_id", ch.ID, "user_channels", len(set))
}

// Channels returns a snapshot of userID's channels. The slice is safe to
// use without holding the lock.
func (r *Registry) Channels(userID string) []*Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.channels[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Channel, 0, len(set))
	for _, ch := range set {
		out = append(out, ch)
	}
	return out
}

// Connected reports whether userID holds at least one channel.
func (r *Registry) Connected(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[userID]) > 0
}

// Count returns the number of registered channels across all users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}

// CloseAll closes every channel. Used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.channels
	r.channels = make(map[string]map[string]*Channel)
	r.total = 0
	r.reportLocked()
	r.mu.Unlock()

	for _, set := range all {
		for _, ch := range set {
			ch.Close("server shutting down")
		}
	}
}

func (r *Registry) reportLocked() {
	metrics.ChannelsActive.Set(float64(r.total))
	metrics.UsersConnected.Set(float64(len(r.channels)))
}
