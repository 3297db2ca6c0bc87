package push

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sink is the physical connection behind a Channel.
type Sink interface {
	Write(ctx context.Context, data []byte) error
	Close(reason string) error
}

// Channel is one live connection owned by a user. Frames are queued and
// written by a single writer goroutine so a slow socket never blocks a
// router.
type Channel struct {
	ID     string
	UserID string

	sink         Sink
	queue        chan []byte
	writeTimeout time.Duration
	done         chan struct{}
	closeOnce    sync.Once
}

// NewChannel wraps sink with an outbound queue of queueSize frames.
func NewChannel(userID string, sink Sink, queueSize int, writeTimeout time.Duration) *Channel {
	return &Channel{
		ID:           uuid.NewString(),
		UserID:       userID,
		sink:         sink,
		queue:        make(chan []byte, queueSize),
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}
}

// Enqueue queues a frame without blocking. Returns false if the queue is
// full or the channel is closed.
func (c *Channel) Enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.queue <- data:
		return true
	default:
		return false
	}
}

// Run writes queued frames until ctx is cancelled, the channel is closed,
// or a write fails.
func (c *Channel) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case data := <-c.queue:
			writeCtx, cancel := context.WithTimeout(ctx, c.writeTimeout)
			err := c.sink.Write(writeCtx, data)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					slog.Debug("Push write failed", "user_id", c.UserID, "channel_id", c.ID, "error", err)
				}
				c.Close("write failed")
				return
			}
		}
	}
}

// Close stops the writer and closes the sink. Safe to call more than once.
func (c *Channel) Close(reason string) {
	c.closeOnce.Do(func() {
		close(c.done)
		if err := c.sink.Close(reason); err != nil {
			slog.Debug("Failed to close push sink", "user_id", c.UserID, "channel_id", c.ID, "error", err)
		}
	})
}

// Done is closed once the channel is closed.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}
