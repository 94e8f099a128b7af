package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/carfix/carfix-api/internal/domain/user"
	"github.com/carfix/carfix-api/internal/domain/vehicle"
	"github.com/carfix/carfix-api/internal/domain/wallet"
)

// WalletService is the slice of the ledger the booking flow needs
type WalletService interface {
	Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description, referenceID string) (*wallet.TransactionResult, error)
	ResumeDebit(ctx context.Context, userID uuid.UUID, referenceID string) (*wallet.TransactionResult, error)
}

// Notifier stores booking-related notifications. May be nil.
type Notifier interface {
	NotifyBookingStatus(ctx context.Context, userID, bookingID uuid.UUID, status string)
	NotifyBookingPaid(ctx context.Context, mechanicID, bookingID uuid.UUID, amount decimal.Decimal)
}

// Service implements the booking lifecycle and payment
type Service struct {
	repo     *Repository
	users    *user.Repository
	vehicles *vehicle.Repository
	wallets  WalletService
	notifier Notifier
}

// NewService creates the booking service
func NewService(repo *Repository, users *user.Repository, vehicles *vehicle.Repository, wallets WalletService, notifier Notifier) *Service {
	return &Service{repo: repo, users: users, vehicles: vehicles, wallets: wallets, notifier: notifier}
}

// Create opens a pending booking for one of the customer's vehicles
func (s *Service) Create(ctx context.Context, customerID uuid.UUID, req *CreateRequest) (*Booking, error) {
	mechanicID, err := uuid.Parse(req.MechanicID)
	if err != nil {
		return nil, ErrMechanicNotFound
	}
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return nil, ErrVehicleNotOwned
	}

	mechanic, err := s.users.GetByID(ctx, mechanicID)
	if err != nil || !mechanic.IsMechanic() {
		return nil, ErrMechanicNotFound
	}

	v, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, ErrVehicleNotOwned
	}
	if v.OwnerID != customerID {
		return nil, ErrVehicleNotOwned
	}

	now := time.Now()
	b := &Booking{
		ID:          uuid.New(),
		CustomerID:  customerID,
		MechanicID:  mechanicID,
		VehicleID:   vehicleID,
		Service:     req.Service,
		ScheduledAt: req.ScheduledAt,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	log.Info().Str("booking_id", b.ID.String()).Str("customer_id", customerID.String()).Msg("booking created")

	if s.notifier != nil {
		s.notifier.NotifyBookingStatus(ctx, mechanicID, b.ID, string(StatusPending))
	}

	return b, nil
}

// Get returns a booking if the user participates in it
func (s *Service) Get(ctx context.Context, userID, bookingID uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return b, nil
}

// List returns the user's bookings
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, int, error) {
	return s.repo.ListByParticipant(ctx, userID, limit, offset)
}

// ChangeStatus applies a lifecycle transition on behalf of the actor.
// Mechanics confirm (with a quote), start and complete; the customer
// may cancel while work has not started.
func (s *Service) ChangeStatus(ctx context.Context, actorID uuid.UUID, role string, bookingID uuid.UUID, req *StatusRequest) (*Booking, error) {
	next := Status(req.Status)
	if !next.Valid() {
		return nil, ErrInvalidTransition
	}

	b, err := s.Get(ctx, actorID, bookingID)
	if err != nil {
		return nil, err
	}

	if !b.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}
	if err := checkTransitionRole(b, actorID, role, next); err != nil {
		return nil, err
	}

	var quote *decimal.Decimal
	if next == StatusConfirmed {
		if req.QuotedPrice == nil || !req.QuotedPrice.IsPositive() {
			return nil, ErrQuoteRequired
		}
		quote = req.QuotedPrice
	}

	if err := s.repo.UpdateStatus(ctx, bookingID, b.Status, next, quote); err != nil {
		return nil, err
	}

	log.Info().
		Str("booking_id", bookingID.String()).
		Str("from", string(b.Status)).
		Str("to", string(next)).
		Msg("booking status changed")

	if s.notifier != nil {
		s.notifier.NotifyBookingStatus(ctx, b.OtherParticipant(actorID), bookingID, string(next))
	}

	return s.repo.GetByID(ctx, bookingID)
}

// Pay settles a completed booking from the customer's wallet. The debit
// reference is derived from the booking id, so a retry after a transient
// failure can never charge twice.
func (s *Service) Pay(ctx context.Context, customerID, bookingID uuid.UUID) (*wallet.TransactionResult, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, ErrNotParticipant
	}
	if b.Status != StatusCompleted || !b.QuotedPrice.Valid {
		return nil, ErrNotPayable
	}
	if b.IsPaid {
		return nil, ErrAlreadyPaid
	}

	referenceID := fmt.Sprintf("booking:%s", b.ID)
	result, err := s.wallets.Debit(ctx, customerID, b.QuotedPrice.Decimal,
		fmt.Sprintf("Payment for booking %s", b.ID),
		referenceID,
	)
	if errors.Is(err, wallet.ErrDuplicateReference) {
		// A previous attempt debited the wallet but died before the
		// booking was flagged paid. Pick up the recorded debit and
		// finish instead of leaving the booking unpayable.
		log.Warn().Str("booking_id", bookingID.String()).Msg("resuming interrupted booking payment")
		result, err = s.wallets.ResumeDebit(ctx, customerID, referenceID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkPaid(ctx, bookingID); err != nil {
		// The debit committed; surface the booking flag failure loudly
		// instead of pretending the payment failed.
		log.Error().Err(err).Str("booking_id", bookingID.String()).Msg("debit applied but booking not marked paid")
		return nil, err
	}

	log.Info().
		Str("booking_id", bookingID.String()).
		Str("transaction_id", result.TransactionID.String()).
		Str("amount", result.Amount.String()).
		Msg("booking paid")

	if s.notifier != nil {
		s.notifier.NotifyBookingPaid(ctx, b.MechanicID, bookingID, result.Amount)
	}

	return result, nil
}

func checkTransitionRole(b *Booking, actorID uuid.UUID, role string, next Status) error {
	switch next {
	case StatusConfirmed, StatusInProgress, StatusCompleted:
		if role != string(user.RoleMechanic) || b.MechanicID != actorID {
			return ErrTransitionByRole
		}
	case StatusCancelled:
		if role != string(user.RoleCustomer) || b.CustomerID != actorID {
			return ErrTransitionByRole
		}
	}
	return nil
}
