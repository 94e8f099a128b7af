package notification

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type represents notification type
type Type string

const (
	TypeBookingStatus  Type = "booking_status"  // booking moved to a new status
	TypeBookingPaid    Type = "booking_paid"    // mechanic: customer paid
	TypeNewMessage     Type = "new_message"     // new in-booking message
	TypeWalletCredited Type = "wallet_credited" // wallet top-up landed
)

// Notification represents a stored in-app notification. Delivery to
// external channels is somebody else's job.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Type      Type            `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Body      sql.NullString  `db:"body" json:"body,omitempty"`
	Data      json.RawMessage `db:"data" json:"data,omitempty"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	ReadAt    sql.NullTime    `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Data links a notification to the entities it is about
type Data struct {
	BookingID     *uuid.UUID `json:"booking_id,omitempty"`
	MessageID     *uuid.UUID `json:"message_id,omitempty"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty"`
}

// SetData encodes link data to JSON
func (n *Notification) SetData(data *Data) {
	if data != nil {
		n.Data, _ = json.Marshal(data)
	}
}
