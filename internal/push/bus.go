package push

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// subjectPrefix is followed by the base64url-encoded user ID so arbitrary
// IDs stay a single subject token.
const subjectPrefix = "push.user."

// NATSBus fans push events out to every messaging instance over NATS.
type NATSBus struct {
	conn *nats.Conn
	sub  *nats.Subscription
}

// NewNATSBus connects to NATS at url.
func NewNATSBus(url, name string) (*NATSBus, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			slog.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	slog.Info("NATS connected", "url", nc.ConnectedUrl())
	return &NATSBus{conn: nc}, nil
}

// Publish sends an encoded event addressed to userID.
func (b *NATSBus) Publish(userID string, data []byte) error {
	return b.conn.Publish(subjectForUser(userID), data)
}

// Subscribe delivers every published event to deliver.
func (b *NATSBus) Subscribe(deliver func(userID string, data []byte)) error {
	sub, err := b.conn.Subscribe(subjectPrefix+"*", func(msg *nats.Msg) {
		userID, ok := userFromSubject(msg.Subject)
		if !ok {
			slog.Warn("Ignoring push with malformed subject", "subject", msg.Subject)
			return
		}
		deliver(userID, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}
	b.sub = sub
	return nil
}

// Close drains the subscription and closes the connection.
func (b *NATSBus) Close() {
	if b.sub != nil {
		if err := b.sub.Unsubscribe(); err != nil {
			slog.Debug("NATS unsubscribe failed", "error", err)
		}
	}
	b.conn.Close()
}

func subjectForUser(userID string) string {
	return subjectPrefix + base64.RawURLEncoding.EncodeToString([]byte(userID))
}

func userFromSubject(subject string) (string, bool) {
	token, ok := strings.CutPrefix(subject, subjectPrefix)
	if !ok || token == "" {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", false
	}
	return string(raw), true
}
