package message

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository persists booking messages
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates the message repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a message
func (r *Repository) Create(ctx context.Context, m *Message) error {
	query := `
		INSERT INTO messages (id, booking_id, sender_id, content, is_read, created_at)
		VALUES (:id, :booking_id, :sender_id, :content, :is_read, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListByBooking returns messages for a booking, newest first
func (r *Repository) ListByBooking(ctx context.Context, bookingID uuid.UUID, limit, offset int) ([]Message, int, error) {
	messages := []Message{}
	query := `
		SELECT id, booking_id, sender_id, content, is_read, created_at
		FROM messages
		WHERE booking_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &messages, query, bookingID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM messages WHERE booking_id = $1`, bookingID); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	return messages, total, nil
}

// MarkRead marks every message in the booking not sent by reader as read
func (r *Repository) MarkRead(ctx context.Context, bookingID, readerID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE messages
		SET is_read = TRUE
		WHERE booking_id = $1 AND sender_id <> $2 AND NOT is_read`,
		bookingID, readerID)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	return res.RowsAffected()
}

// UnreadCount counts unread messages addressed to the user across all
// of their bookings
func (r *Repository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM messages m
		JOIN bookings b ON b.id = m.booking_id
		WHERE NOT m.is_read
		  AND m.sender_id <> $1
		  AND (b.customer_id = $1 OR b.mechanic_id = $1)`

	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return count, nil
}
