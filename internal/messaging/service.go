// Package messaging stores direct messages and pushes them to connected
// recipients.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/skill-swap/internal/apperr"
	"github.com/ashureev/skill-swap/internal/domain"
	"github.com/ashureev/skill-swap/internal/store"
	"github.com/google/uuid"
)

const (
	DefaultConversationLimit = 50
	MaxConversationLimit     = 200
)

// Router pushes events to a user's live channels.
type Router interface {
	Route(userID, event string, payload any)
}

// SendInput is the body of a new message.
type SendInput struct {
	Recipient string `json:"recipient" validate:"required"`
	Content   string `json:"content" validate:"required,max=5000"`
}

// NotifyRequest is an event relayed by another service for a user.
type NotifyRequest struct {
	UserID  string          `json:"userId" validate:"required"`
	Event   string          `json:"event" validate:"required"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Service implements messaging operations.
type Service struct {
	repo   store.MessageRepository
	router Router
	now    func() time.Time
}

// NewService creates a messaging service.
func NewService(repo store.MessageRepository, router Router) *Service {
	return &Service{
		repo:   repo,
		router: router,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Send persists a message, then pushes it to the recipient. The push
// outcome never affects the result.
func (s *Service) Send(ctx context.Context, sender string, in SendInput) (*domain.Message, error) {
	in.Recipient = strings.TrimSpace(in.Recipient)
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, apperr.Validation("Content is required")
	}

	msg := &domain.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Recipient: in.Recipient,
		Content:   in.Content,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	slog.Debug("Message stored", "message_id", msg.ID, "sender", sender, "recipient", msg.Recipient)
	s.router.Route(msg.Recipient, domain.EventNewMessage, msg)
	return msg, nil
}

// Conversation returns the most recent limit messages between userA and
// userB, oldest first. A non-positive limit uses the default; larger
// limits are capped.
func (s *Service) Conversation(ctx context.Context, userA, userB string, limit int) ([]domain.Message, error) {
	switch {
	case limit <= 0:
		limit = DefaultConversationLimit
	case limit > MaxConversationLimit:
		limit = MaxConversationLimit
	}

	msgs, err := s.repo.Conversation(ctx, userA, userB, limit)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

// MarkRead marks every unread message from sender to recipient as read
// and returns how many changed.
func (s *Service) MarkRead(ctx context.Context, recipient, sender string) (int64, error) {
	n, err := s.repo.MarkRead(ctx, recipient, sender)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	return n, nil
}

// Notify pushes a relayed event to the user's live channels.
func (s *Service) Notify(_ context.Context, req NotifyRequest) error {
	req.UserID = strings.TrimSpace(req.UserID)
	if err := domain.Validate(req); err != nil {
		return err
	}

	var payload any
	if len(req.Payload) > 0 {
		payload = req.Payload
	}
	s.router.Route(req.UserID, req.Event, payload)
	return nil
}
