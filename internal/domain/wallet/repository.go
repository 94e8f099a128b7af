package wallet

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Repository owns all writes to wallets and wallet_transactions.
// Every mutation goes through Apply, which serializes concurrent
// operations per user via a row lock on the wallet record.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a wallet repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// EnsureWallet lazily creates a zero-balance wallet for the user.
// Safe to call concurrently: the insert is idempotent.
func (r *Repository) EnsureWallet(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

// GetBalance returns the current balance, creating the wallet if needed
func (r *Repository) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	if err := r.EnsureWallet(ctx, userID); err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1`, userID)
	return balance, err
}

// ListTransactions returns a page of the user's ledger, newest first
func (r *Repository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, error) {
	query := `
		SELECT * FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	transactions := []Transaction{}
	err := r.db.SelectContext(ctx, &transactions, query, userID, limit, offset)
	return transactions, err
}

// CountTransactions returns the total number of ledger entries for the user
func (r *Repository) CountTransactions(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM wallet_transactions WHERE user_id = $1`, userID)
	return count, err
}

// GetTransactionByReference returns the ledger entry recorded under the
// given type and reference id, or ErrTransactionNotFound
func (r *Repository) GetTransactionByReference(ctx context.Context, userID uuid.UUID, txType TransactionType, referenceID string) (*Transaction, error) {
	var t Transaction
	err := r.db.GetContext(ctx, &t, `
		SELECT * FROM wallet_transactions
		WHERE user_id = $1 AND type = $2 AND reference_id = $3
	`, userID, string(txType), referenceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Apply executes one balance mutation as a single atomic unit:
// lazy wallet creation, balance read-modify-write and the ledger append
// either all commit or none do. The FOR UPDATE lock on the wallet row
// serializes mutations per user; different users proceed in parallel.
func (r *Repository) Apply(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, txType TransactionType, description, referenceID string) (*TransactionResult, error) {
	if !txType.Valid() {
		return nil, ErrInvalidTransactionType
	}

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	balance, err := r.lockWallet(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	exists, err := r.referenceExists(ctx, tx, userID, txType, referenceID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateReference
	}

	var newBalance decimal.Decimal
	if txType == TransactionTypeCredit {
		newBalance = balance.Add(amount)
	} else {
		newBalance = balance.Sub(amount)
	}
	if newBalance.IsNegative() {
		return nil, ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance = $1, updated_at = now() WHERE user_id = $2`,
		newBalance, userID,
	); err != nil {
		return nil, err
	}

	entry := Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		Description: description,
		ReferenceID: referenceID,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_transactions (id, user_id, amount, type, description, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.UserID, entry.Amount, string(entry.Type), entry.Description, entry.ReferenceID, entry.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateReference
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &TransactionResult{
		TransactionID:   entry.ID,
		UserID:          userID,
		PreviousBalance: balance,
		NewBalance:      newBalance,
		Amount:          amount,
		Type:            txType,
		Description:     description,
		ReferenceID:     referenceID,
		CreatedAt:       entry.CreatedAt,
	}, nil
}

// lockWallet creates the wallet if missing and takes the per-user row lock.
// Both statements run inside the caller's transaction so two first-time
// mutations cannot race the creation.
func (r *Repository) lockWallet(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (decimal.Decimal, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err := tx.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
	return balance, err
}

func (r *Repository) referenceExists(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, txType TransactionType, referenceID string) (bool, error) {
	if referenceID == "" {
		return false, nil
	}

	var id uuid.UUID
	err := tx.GetContext(ctx, &id, `
		SELECT id FROM wallet_transactions
		WHERE user_id = $1 AND type = $2 AND reference_id = $3
		LIMIT 1
	`, userID, string(txType), referenceID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
