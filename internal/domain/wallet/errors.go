package wallet

import "errors"

var (
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInsufficientFunds      = errors.New("insufficient wallet balance")
	ErrDuplicateReference     = errors.New("reference already used")
	ErrTransactionNotFound    = errors.New("transaction not found")
)
