package message

import "errors"

var ErrBookingClosed = errors.New("booking no longer accepts messages")
