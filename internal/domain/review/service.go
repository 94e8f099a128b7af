package review

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/carfix/carfix-api/internal/domain/booking"
)

// Service implements review rules around the repository
type Service struct {
	repo     *Repository
	bookings *booking.Repository
}

// NewService creates the review service
func NewService(repo *Repository, bookings *booking.Repository) *Service {
	return &Service{repo: repo, bookings: bookings}
}

// Create records a review of the mechanic who worked a completed booking
func (s *Service) Create(ctx context.Context, reviewerID, bookingID uuid.UUID, req *CreateRequest) (*Review, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != reviewerID {
		return nil, booking.ErrNotParticipant
	}
	if b.Status != booking.StatusCompleted {
		return nil, ErrBookingNotCompleted
	}

	rv := &Review{
		ID:         uuid.New(),
		MechanicID: b.MechanicID,
		ReviewerID: reviewerID,
		BookingID:  bookingID,
		Rating:     req.Rating,
		CreatedAt:  time.Now(),
	}
	if req.Comment != "" {
		rv.Comment = sql.NullString{String: req.Comment, Valid: true}
	}

	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, err
	}

	log.Info().
		Str("review_id", rv.ID.String()).
		Str("mechanic_id", b.MechanicID.String()).
		Int("rating", req.Rating).
		Msg("review created")

	return rv, nil
}

// ListByMechanic returns a mechanic's reviews with their rating summary
func (s *Service) ListByMechanic(ctx context.Context, mechanicID uuid.UUID, limit, offset int) ([]Review, int, *Summary, error) {
	reviews, total, err := s.repo.ListByMechanic(ctx, mechanicID, limit, offset)
	if err != nil {
		return nil, 0, nil, err
	}
	summary, err := s.repo.SummaryByMechanic(ctx, mechanicID)
	if err != nil {
		return nil, 0, nil, err
	}
	return reviews, total, summary, nil
}
