package profile

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidRate     = errors.New("hourly rate must not be negative")
)
