package message

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/carfix/carfix-api/internal/domain/booking"
)

// Notifier stores a notification for the message recipient. May be nil.
type Notifier interface {
	NotifyNewMessage(ctx context.Context, userID, bookingID, messageID uuid.UUID, preview string)
}

// Service implements in-booking messaging
type Service struct {
	repo     *Repository
	bookings *booking.Repository
	hub      *Hub
	notifier Notifier
}

// NewService creates the message service
func NewService(repo *Repository, bookings *booking.Repository, hub *Hub, notifier Notifier) *Service {
	return &Service{repo: repo, bookings: bookings, hub: hub, notifier: notifier}
}

// participantBooking loads the booking and verifies the user is part of it
func (s *Service) participantBooking(ctx context.Context, userID, bookingID uuid.UUID) (*booking.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.HasParticipant(userID) {
		return nil, booking.ErrNotParticipant
	}
	return b, nil
}

// Send stores a message, fans it out over the hub and notifies the
// other participant
func (s *Service) Send(ctx context.Context, senderID, bookingID uuid.UUID, content string) (*Message, error) {
	b, err := s.participantBooking(ctx, senderID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == booking.StatusCancelled {
		return nil, ErrBookingClosed
	}

	m := &Message{
		ID:        uuid.New(),
		BookingID: bookingID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastToBooking(bookingID, &WSEvent{
			Type:      EventNewMessage,
			BookingID: bookingID,
			SenderID:  senderID,
			Message:   m,
		})
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(ctx, b.OtherParticipant(senderID), bookingID, m.ID, preview(content))
	}

	return m, nil
}

// List returns the booking's messages, newest first
func (s *Service) List(ctx context.Context, userID, bookingID uuid.UUID, limit, offset int) ([]Message, int, error) {
	if _, err := s.participantBooking(ctx, userID, bookingID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByBooking(ctx, bookingID, limit, offset)
}

// MarkRead marks the other participant's messages as read and tells
// them over the hub
func (s *Service) MarkRead(ctx context.Context, userID, bookingID uuid.UUID) error {
	if _, err := s.participantBooking(ctx, userID, bookingID); err != nil {
		return err
	}

	n, err := s.repo.MarkRead(ctx, bookingID, userID)
	if err != nil {
		return err
	}

	if n > 0 && s.hub != nil {
		s.hub.BroadcastToBooking(bookingID, &WSEvent{
			Type:      EventRead,
			BookingID: bookingID,
			SenderID:  userID,
		})
	}

	return nil
}

// UnreadCount returns the user's total unread messages
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// SubscribeConnection subscribes a freshly connected client to its
// recent bookings so hub events reach it
func (s *Service) SubscribeConnection(ctx context.Context, userID uuid.UUID) {
	if s.hub == nil {
		return
	}

	bookings, _, err := s.bookings.ListByParticipant(ctx, userID, 100, 0)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("subscribe websocket client to bookings")
		return
	}
	for _, b := range bookings {
		s.hub.SubscribeToBooking(b.ID, userID)
	}
}

func preview(content string) string {
	const max = 80
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "…"
}
