package store

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ashureev/skill-swap/internal/domain"
)

// CreateMessage inserts a message.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *domain.Message) error {
	query := `INSERT INTO messages (id, sender, recipient, content, read, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		msg.ID, msg.Sender, msg.Recipient, msg.Content, msg.Read, toMillis(msg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Conversation returns the latest limit messages between two users, oldest first.
func (s *SQLiteStore) Conversation(ctx context.Context, userA, userB string, limit int) ([]domain.Message, error) {
	query := `
		SELECT id, sender, recipient, content, read, created_at
		FROM messages
		WHERE (sender = ? AND recipient = ?) OR (sender = ? AND recipient = ?)
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, userA, userB, userB, userA, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close conversation rows", "error", closeErr)
		}
	}()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var msg domain.Message
		var createdAt int64
		if err := rows.Scan(&msg.ID, &msg.Sender, &msg.Recipient, &msg.Content, &msg.Read, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		msg.CreatedAt = fromMillis(createdAt)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation: %w", err)
	}

	slices.Reverse(messages)
	return messages, nil
}

// MarkRead flips every unread message from sender to recipient.
func (s *SQLiteStore) MarkRead(ctx context.Context, recipient, sender string) (int64, error) {
	query := `UPDATE messages SET read = 1 WHERE sender = ? AND recipient = ? AND read = 0`
	result, err := s.db.ExecContext(ctx, query, sender, recipient)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rows, nil
}
