package booking

import "errors"

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrNotParticipant     = errors.New("user is not part of this booking")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrTransitionByRole   = errors.New("role may not perform this transition")
	ErrQuoteRequired      = errors.New("confirming a booking requires a quoted price")
	ErrVehicleNotOwned    = errors.New("vehicle does not belong to the customer")
	ErrMechanicNotFound   = errors.New("mechanic not found")
	ErrNotPayable         = errors.New("booking is not completed or has no quote")
	ErrAlreadyPaid        = errors.New("booking is already paid")
)
