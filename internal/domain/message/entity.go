package message

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single chat message inside a booking
type Message struct {
	ID        uuid.UUID `db:"id" json:"id"`
	BookingID uuid.UUID `db:"booking_id" json:"booking_id"`
	SenderID  uuid.UUID `db:"sender_id" json:"sender_id"`
	Content   string    `db:"content" json:"content"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SendRequest is the message creation payload
type SendRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}
