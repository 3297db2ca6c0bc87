// Package feedback records ratings between swap participants once their
// swap has completed.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/skill-swap/internal/apperr"
	"github.com/ashureev/skill-swap/internal/domain"
	"github.com/ashureev/skill-swap/internal/store"
	"github.com/google/uuid"
)

const notCompletedMessage = "cannot give feedback before swap completion"

// CompletionChecker reports whether a swap has completed.
type CompletionChecker interface {
	IsCompleted(ctx context.Context, swapOfferID string) (bool, error)
}

// SkillTaughtInput rates the skill taught during the swap.
type SkillTaughtInput struct {
	Name          string `json:"name" validate:"max=100"`
	Effectiveness *int   `json:"effectiveness" validate:"omitempty,min=1,max=5"`
}

// SubmitInput is the body of a feedback submission.
type SubmitInput struct {
	SwapOfferID string            `json:"swapOfferId" validate:"required"`
	GivenTo     string            `json:"givenTo" validate:"required"`
	Rating      int               `json:"rating" validate:"min=1,max=5"`
	Comment     string            `json:"comment" validate:"max=2000"`
	SkillTaught *SkillTaughtInput `json:"skillTaught"`
}

// Service implements the feedback operations.
type Service struct {
	repo    store.FeedbackRepository
	checker CompletionChecker
	now     func() time.Time
}

// NewService creates a feedback service.
func NewService(repo store.FeedbackRepository, checker CompletionChecker) *Service {
	return &Service{
		repo:    repo,
		checker: checker,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Submit records feedback from givenBy. The swap must be verified as
// completed first; an unreachable or slow verifier counts as not completed.
func (s *Service) Submit(ctx context.Context, givenBy string, in SubmitInput) (*domain.Feedback, error) {
	in.SwapOfferID = strings.TrimSpace(in.SwapOfferID)
	in.GivenTo = strings.TrimSpace(in.GivenTo)
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	if in.GivenTo == givenBy {
		return nil, apperr.Validation("cannot give feedback to yourself")
	}

	completed, err := s.checker.IsCompleted(ctx, in.SwapOfferID)
	if err != nil || !completed {
		slog.Info("Feedback rejected, swap not verified complete",
			"offer_id", in.SwapOfferID, "given_by", givenBy, "error", err)
		return nil, apperr.PreconditionFailed(notCompletedMessage)
	}

	fb := &domain.Feedback{
		ID:          uuid.NewString(),
		SwapOfferID: in.SwapOfferID,
		GivenBy:     givenBy,
		GivenTo:     in.GivenTo,
		Rating:      in.Rating,
		Comment:     in.Comment,
		CreatedAt:   s.now(),
	}
	if st := in.SkillTaught; st != nil && (st.Name != "" || st.Effectiveness != nil) {
		fb.SkillTaught = &domain.SkillTaught{Name: st.Name}
		if st.Effectiveness != nil {
			fb.SkillTaught.Effectiveness = *st.Effectiveness
		}
	}

	err = s.repo.CreateFeedback(ctx, fb)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.Conflict("feedback already submitted for this swap")
	}
	if err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}

	slog.Info("Feedback recorded", "feedback_id", fb.ID, "offer_id", fb.SwapOfferID, "given_to", fb.GivenTo)
	return fb, nil
}

// Received returns feedback given to userID, newest first.
func (s *Service) Received(ctx context.Context, userID string) ([]domain.Feedback, error) {
	list, err := s.repo.ListFeedbackReceived(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return list, nil
}

// Stats aggregates feedback received by userID.
func (s *Service) Stats(ctx context.Context, userID string) (domain.Stats, error) {
	stats, err := s.repo.FeedbackStats(ctx, userID)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("feedback stats: %w", err)
	}
	return stats, nil
}
