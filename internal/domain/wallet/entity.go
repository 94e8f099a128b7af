package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType carries the sign of a balance movement; stored amounts
// are always positive magnitudes.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// Valid reports whether the type is a known ledger operation
func (t TransactionType) Valid() bool {
	return t == TransactionTypeCredit || t == TransactionTypeDebit
}

// DefaultDescription returns the memo used when the caller supplies none
func (t TransactionType) DefaultDescription() string {
	if t == TransactionTypeCredit {
		return "Wallet top-up"
	}
	return "Wallet deduction"
}

// Wallet is the per-user running balance record. The balance is never
// negative and is only written through Repository.Apply.
type Wallet struct {
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Transaction is an append-only ledger entry. Replaying a user's
// transactions in creation order (+amount for credit, -amount for debit)
// reconstructs the wallet balance exactly.
type Transaction struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      uuid.UUID       `db:"user_id" json:"user_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Type        TransactionType `db:"type" json:"type"`
	Description string          `db:"description" json:"description"`
	ReferenceID string          `db:"reference_id" json:"reference_id"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// TransactionResult is returned by a successful balance mutation
type TransactionResult struct {
	TransactionID   uuid.UUID       `json:"transaction_id"`
	UserID          uuid.UUID       `json:"user_id"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	Amount          decimal.Decimal `json:"amount"`
	Type            TransactionType `json:"type"`
	Description     string          `json:"description"`
	ReferenceID     string          `json:"reference_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Pagination describes a transaction history page
type Pagination struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Summary is the wallet overview returned by GET /wallet
type Summary struct {
	Balance      decimal.Decimal `json:"balance"`
	Transactions []Transaction   `json:"transactions"`
	Pagination   Pagination      `json:"pagination"`
}
