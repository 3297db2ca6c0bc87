package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ashureev/skill-swap/internal/domain"
	"github.com/ashureev/skill-swap/internal/shared"
)

// CreateFeedback inserts feedback, relying on the unique (swap_offer_id, given_by) index.
func (s *SQLiteStore) CreateFeedback(ctx context.Context, fb *domain.Feedback) error {
	query := `
	INSERT INTO feedback (id, swap_offer_id, given_by, given_to, rating, comment,
		skill_taught_name, skill_taught_effectiveness, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var skillName, effectiveness interface{}
	if fb.SkillTaught != nil {
		skillName = fb.SkillTaught.Name
		if fb.SkillTaught.Effectiveness != 0 {
			effectiveness = fb.SkillTaught.Effectiveness
		}
	}

	_, err := s.db.ExecContext(ctx, query,
		fb.ID, fb.SwapOfferID, fb.GivenBy, fb.GivenTo, fb.Rating, fb.Comment,
		skillName, effectiveness, toMillis(fb.CreatedAt),
	)
	if shared.IsSQLiteUniqueError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// ListFeedbackReceived returns feedback given to userID, newest first.
func (s *SQLiteStore) ListFeedbackReceived(ctx context.Context, userID string) ([]domain.Feedback, error) {
	query := `
		SELECT id, swap_offer_id, given_by, given_to, rating, comment,
		       skill_taught_name, skill_taught_effectiveness, created_at
		FROM feedback WHERE given_to = ?
		ORDER BY created_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close feedback rows", "error", closeErr)
		}
	}()

	list := make([]domain.Feedback, 0)
	for rows.Next() {
		var fb domain.Feedback
		var skillName sql.NullString
		var effectiveness sql.NullInt64
		var createdAt int64

		if err := rows.Scan(
			&fb.ID, &fb.SwapOfferID, &fb.GivenBy, &fb.GivenTo, &fb.Rating, &fb.Comment,
			&skillName, &effectiveness, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan feedback row: %w", err)
		}

		if skillName.Valid || effectiveness.Valid {
			fb.SkillTaught = &domain.SkillTaught{
				Name:          skillName.String,
				Effectiveness: int(effectiveness.Int64),
			}
		}
		fb.CreatedAt = fromMillis(createdAt)
		list = append(list, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return list, nil
}

// FeedbackStats aggregates ratings given to userID. AVG skips rows without
// an effectiveness score; COALESCE turns the empty aggregate into zeros.
func (s *SQLiteStore) FeedbackStats(ctx context.Context, userID string) (domain.Stats, error) {
	query := `
		SELECT COUNT(*), COALESCE(AVG(rating), 0), COALESCE(AVG(skill_taught_effectiveness), 0)
		FROM feedback WHERE given_to = ?`

	var stats domain.Stats
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.TotalRatings, &stats.AverageRating, &stats.SkillEffectiveness,
	); err != nil {
		return domain.Stats{}, fmt.Errorf("aggregate feedback: %w", err)
	}
	return stats, nil
}
