package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateRequest is the booking creation payload
type CreateRequest struct {
	MechanicID  string    `json:"mechanic_id" validate:"required,uuid"`
	VehicleID   string    `json:"vehicle_id" validate:"required,uuid"`
	Service     string    `json:"service" validate:"required,min=5,max=2000"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

// StatusRequest is the status change payload. QuotedPrice is required
// when confirming.
type StatusRequest struct {
	Status      string           `json:"status" validate:"required,booking_status"`
	QuotedPrice *decimal.Decimal `json:"quoted_price"`
}
