package review

import "errors"

var (
	ErrAlreadyReviewed     = errors.New("booking already has a review")
	ErrBookingNotCompleted = errors.New("only completed bookings can be reviewed")
)
