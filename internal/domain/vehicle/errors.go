package vehicle

import "errors"

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrNotOwner        = errors.New("vehicle belongs to another user")
	ErrDuplicatePlate  = errors.New("plate already registered")
)
