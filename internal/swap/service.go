// Package swap manages the swap offer lifecycle.
package swap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/skill-swap/internal/apperr"
	"github.com/ashureev/skill-swap/internal/domain"
	"github.com/ashureev/skill-swap/internal/notify"
	"github.com/ashureev/skill-swap/internal/store"
	"github.com/google/uuid"
)

// CreateInput is the body of a new swap offer.
type CreateInput struct {
	OfferedTo      string       `json:"offeredTo" validate:"required"`
	OfferedSkill   domain.Skill `json:"offeredSkill"`
	RequestedSkill domain.Skill `json:"requestedSkill"`
	Description    string       `json:"description" validate:"max=1000"`
}

// StatusInput is the body of a status change. The status is checked by
// UpdateStatus after authorization.
type StatusInput struct {
	Status domain.SwapStatus `json:"status"`
}

// NewSwapOfferPayload is pushed to the recipient of a new offer.
type NewSwapOfferPayload struct {
	OfferID   string `json:"offerId"`
	OfferedBy string `json:"offeredBy"`
}

// StatusPayload is pushed to the creator when an offer changes status.
type StatusPayload struct {
	OfferID string            `json:"offerId"`
	Status  domain.SwapStatus `json:"status"`
}

// Service implements swap offer operations.
type Service struct {
	repo     store.SwapRepository
	notifier notify.Notifier
	now      func() time.Time
}

// NewService creates a swap service. A nil notifier disables notifications.
func NewService(repo store.SwapRepository, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create persists a pending offer from offeredBy and notifies the recipient.
func (s *Service) Create(ctx context.Context, offeredBy string, in CreateInput) (*domain.SwapOffer, error) {
	in.OfferedTo = strings.TrimSpace(in.OfferedTo)
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	if in.OfferedTo == offeredBy {
		return nil, apperr.Validation("cannot create a swap offer to yourself")
	}

	now := s.now()
	offer := &domain.SwapOffer{
		ID:             uuid.NewString(),
		OfferedBy:      offeredBy,
		OfferedTo:      in.OfferedTo,
		OfferedSkill:   in.OfferedSkill,
		RequestedSkill: in.RequestedSkill,
		Status:         domain.SwapPending,
		Description:    in.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateSwapOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("create swap offer: %w", err)
	}

	slog.Info("Swap offer created", "offer_id", offer.ID, "offered_by", offeredBy, "offered_to", offer.OfferedTo)
	s.notifier.Notify(ctx, offer.OfferedTo, domain.EventNewSwapOffer, NewSwapOfferPayload{
		OfferID:   offer.ID,
		OfferedBy: offeredBy,
	})
	return offer, nil
}

// ListForUser returns every offer where userID is either party, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.SwapOffer, error) {
	offers, err := s.repo.ListSwapOffersForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list swap offers: %w", err)
	}
	if offers == nil {
		offers = []domain.SwapOffer{}
	}
	return offers, nil
}

// Get returns one offer.
func (s *Service) Get(ctx context.Context, id string) (*domain.SwapOffer, error) {
	offer, err := s.repo.GetSwapOffer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get swap offer: %w", err)
	}
	if offer == nil {
		return nil, apperr.NotFound("swap offer not found")
	}
	return offer, nil
}

// UpdateStatus moves an offer to requested on behalf of actingUserID.
// Only the recipient may change status, and only along the lifecycle
// pending -> accepted|rejected, accepted -> completed.
func (s *Service) UpdateStatus(ctx context.Context, offerID string, requested domain.SwapStatus, actingUserID string) (*domain.SwapOffer, error) {
	offer, err := s.Get(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.OfferedTo != actingUserID {
		return nil, apperr.Forbidden("only the recipient can update this swap offer")
	}
	if !requested.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("invalid status %q", requested))
	}
	if !offer.Status.CanTransitionTo(requested) {
		return nil, apperr.Conflict(fmt.Sprintf("cannot change status from %s to %s", offer.Status, requested))
	}

	now := s.now()
	err = s.repo.UpdateSwapStatus(ctx, offer.ID, offer.Status, requested, now)
	if errors.Is(err, store.ErrStaleStatus) {
		return nil, apperr.Conflict("swap offer status changed concurrently")
	}
	if err != nil {
		return nil, fmt.Errorf("update swap status: %w", err)
	}

	slog.Info("Swap offer status changed", "offer_id", offer.ID, "from", offer.Status, "to", requested)
	offer.Status = requested
	offer.UpdatedAt = now

	s.notifier.Notify(ctx, offer.OfferedBy, domain.EventSwapOfferUpdated, StatusPayload{
		OfferID: offer.ID,
		Status:  requested,
	})
	return offer, nil
}

// IsCompleted reports whether the offer has reached completed.
func (s *Service) IsCompleted(ctx context.Context, id string) (bool, error) {
	offer, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return offer.Status == domain.SwapCompleted, nil
}
