package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/skill-swap/internal/domain"
)

const swapColumns = `id, offered_by, offered_to,
	offered_skill_name, offered_skill_level,
	requested_skill_name, requested_skill_level,
	status, description, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSwapOffer(row rowScanner) (*domain.SwapOffer, error) {
	var offer domain.SwapOffer
	var offeredLevel, requestedLevel, status string
	var createdAt, updatedAt int64

	if err := row.Scan(
		&offer.ID, &offer.OfferedBy, &offer.OfferedTo,
		&offer.OfferedSkill.Name, &offeredLevel,
		&offer.RequestedSkill.Name, &requestedLevel,
		&status, &offer.Description, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	offer.OfferedSkill.Level = domain.SkillLevel(offeredLevel)
	offer.RequestedSkill.Level = domain.SkillLevel(requestedLevel)
	offer.Status = domain.SwapStatus(status)
	offer.CreatedAt = fromMillis(createdAt)
	offer.UpdatedAt = fromMillis(updatedAt)
	return &offer, nil
}

// CreateSwapOffer inserts a new offer.
func (s *SQLiteStore) CreateSwapOffer(ctx context.Context, offer *domain.SwapOffer) error {
	query := `INSERT INTO swap_offers (` + swapColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		offer.ID, offer.OfferedBy, offer.OfferedTo,
		offer.OfferedSkill.Name, string(offer.OfferedSkill.Level),
		offer.RequestedSkill.Name, string(offer.RequestedSkill.Level),
		string(offer.Status), offer.Description,
		toMillis(offer.CreatedAt), toMillis(offer.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert swap offer: %w", err)
	}
	return nil
}

// GetSwapOffer retrieves an offer by ID.
func (s *SQLiteStore) GetSwapOffer(ctx context.Context, id string) (*domain.SwapOffer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+swapColumns+` FROM swap_offers WHERE id = ?`, id)

	offer, err := scanSwapOffer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan swap offer row: %w", err)
	}
	return offer, nil
}

// ListSwapOffersForUser returns offers where userID is either party, newest first.
func (s *SQLiteStore) ListSwapOffersForUser(ctx context.Context, userID string) ([]domain.SwapOffer, error) {
	query := `SELECT ` + swapColumns + ` FROM swap_offers
		WHERE offered_by = ? OR offered_to = ?
		ORDER BY created_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("query swap offers: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close swap offer rows", "error", closeErr)
		}
	}()

	offers := make([]domain.SwapOffer, 0)
	for rows.Next() {
		offer, err := scanSwapOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap offer row: %w", err)
		}
		offers = append(offers, *offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap offers: %w", err)
	}
	return offers, nil
}

// UpdateSwapStatus sets the status with optimistic locking on the previous status.
func (s *SQLiteStore) UpdateSwapStatus(ctx context.Context, id string, from, to domain.SwapStatus, updatedAt time.Time) error {
	query := `UPDATE swap_offers SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := s.db.ExecContext(ctx, query, string(to), toMillis(updatedAt), id, string(from))
	if err != nil {
		return fmt.Errorf("update swap status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Warn("UpdateSwapStatus affected 0 rows", "offer_id", id, "expected_status", from)
		return ErrStaleStatus
	}
	return nil
}
