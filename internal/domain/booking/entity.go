package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the booking lifecycle state (matches booking_status enum)
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// transitions defines the allowed lifecycle edges. Completed and
// cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

// Valid reports whether the status is a known lifecycle state
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving to next
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0 && s.Valid()
}

// Booking represents a repair appointment between a customer and a mechanic
type Booking struct {
	ID          uuid.UUID           `db:"id" json:"id"`
	CustomerID  uuid.UUID           `db:"customer_id" json:"customer_id"`
	MechanicID  uuid.UUID           `db:"mechanic_id" json:"mechanic_id"`
	VehicleID   uuid.UUID           `db:"vehicle_id" json:"vehicle_id"`
	Service     string              `db:"service" json:"service"`
	ScheduledAt time.Time           `db:"scheduled_at" json:"scheduled_at"`
	Status      Status              `db:"status" json:"status"`
	QuotedPrice decimal.NullDecimal `db:"quoted_price" json:"quoted_price,omitempty"`
	IsPaid      bool                `db:"is_paid" json:"is_paid"`
	CreatedAt   time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `db:"updated_at" json:"updated_at"`
}

// HasParticipant checks if the user is either side of the booking
func (b *Booking) HasParticipant(userID uuid.UUID) bool {
	return b.CustomerID == userID || b.MechanicID == userID
}

// OtherParticipant returns the counterparty of the given user
func (b *Booking) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if b.CustomerID == userID {
		return b.MechanicID
	}
	return b.CustomerID
}
