// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ashureev/skill-swap/internal/domain"
)

var (
	// ErrDuplicate is returned when an insert violates a uniqueness rule.
	ErrDuplicate = errors.New("duplicate record")

	// ErrStaleStatus is returned when a status compare-and-set finds a
	// different status than the one the caller read.
	ErrStaleStatus = errors.New("status changed concurrently")
)

// SwapRepository persists swap offers.
type SwapRepository interface {
	// CreateSwapOffer inserts a new offer.
	CreateSwapOffer(ctx context.Context, offer *domain.SwapOffer) error

	// GetSwapOffer retrieves an offer by ID. Returns nil, nil if absent.
	GetSwapOffer(ctx context.Context, id string) (*domain.SwapOffer, error)

	// ListSwapOffersForUser returns offers where userID is either party, newest first.
	ListSwapOffersForUser(ctx context.Context, userID string) ([]domain.SwapOffer, error)

	// UpdateSwapStatus sets status and updated_at only if the stored status is still from.
	// Returns ErrStaleStatus otherwise.
	UpdateSwapStatus(ctx context.Context, id string, from, to domain.SwapStatus, updatedAt time.Time) error
}

// FeedbackRepository persists feedback and answers aggregate queries.
type FeedbackRepository interface {
	// CreateFeedback inserts feedback. Returns ErrDuplicate if the author
	// already left feedback for the swap.
	CreateFeedback(ctx context.Context, fb *domain.Feedback) error

	// ListFeedbackReceived returns feedback given to userID, newest first.
	ListFeedbackReceived(ctx context.Context, userID string) ([]domain.Feedback, error)

	// FeedbackStats aggregates feedback given to userID.
	FeedbackStats(ctx context.Context, userID string) (domain.Stats, error)
}

// MessageRepository persists direct messages.
type MessageRepository interface {
	// CreateMessage inserts a message.
	CreateMessage(ctx context.Context, msg *domain.Message) error

	// Conversation returns the most recent limit messages exchanged between
	// userA and userB in either direction, oldest first.
	Conversation(ctx context.Context, userA, userB string, limit int) ([]domain.Message, error)

	// MarkRead marks every unread message from sender to recipient as read
	// and returns how many changed.
	MarkRead(ctx context.Context, recipient, sender string) (int64, error)
}

// Repository is the full store used by the services.
type Repository interface {
	SwapRepository
	FeedbackRepository
	MessageRepository

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
