package notification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Service creates and queries stored notifications. Creation failures
// are logged but never propagated: a missed notification must not fail
// the operation that triggered it.
type Service struct {
	repo Repository
}

// NewService creates the notification service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns a page of the user's notifications plus the total count
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// UnreadCount returns the number of unread notifications
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnreadByUser(ctx, userID)
}

// MarkRead marks one notification read, scoped to its owner
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil || n.UserID != userID {
		return ErrNotificationNotFound
	}
	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllRead marks every unread notification read
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// NotifyBookingStatus stores a booking status-change notification
func (s *Service) NotifyBookingStatus(ctx context.Context, userID, bookingID uuid.UUID, status string) {
	n := s.build(userID, TypeBookingStatus, "Booking update", fmt.Sprintf("Your booking is now %s", status))
	n.SetData(&Data{BookingID: &bookingID})
	s.store(ctx, n)
}

// NotifyBookingPaid tells the mechanic a booking was paid
func (s *Service) NotifyBookingPaid(ctx context.Context, mechanicID, bookingID uuid.UUID, amount decimal.Decimal) {
	n := s.build(mechanicID, TypeBookingPaid, "Booking paid", fmt.Sprintf("Payment of %s received", amount.StringFixed(2)))
	n.SetData(&Data{BookingID: &bookingID})
	s.store(ctx, n)
}

// NotifyNewMessage tells a booking participant about a new message
func (s *Service) NotifyNewMessage(ctx context.Context, userID, bookingID, messageID uuid.UUID, preview string) {
	n := s.build(userID, TypeNewMessage, "New message", preview)
	n.SetData(&Data{BookingID: &bookingID, MessageID: &messageID})
	s.store(ctx, n)
}

// WalletCredited stores a top-up notification. Satisfies wallet.Notifier.
func (s *Service) WalletCredited(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, transactionID uuid.UUID) {
	n := s.build(userID, TypeWalletCredited, "Wallet credited", fmt.Sprintf("%s was added to your wallet", amount.StringFixed(2)))
	n.SetData(&Data{TransactionID: &transactionID})
	s.store(ctx, n)
}

func (s *Service) build(userID uuid.UUID, t Type, title, body string) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      t,
		Title:     title,
		Body:      sql.NullString{String: body, Valid: body != ""},
		CreatedAt: time.Now().UTC(),
	}
}

func (s *Service) store(ctx context.Context, n *Notification) {
	if err := s.repo.Create(ctx, n); err != nil {
		log.Error().Err(err).
			Str("user_id", n.UserID.String()).
			Str("type", string(n.Type)).
			Msg("failed to store notification")
	}
}
