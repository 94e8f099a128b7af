package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/carfix/carfix-api/internal/pkg/cache"
)

const summaryCachePrefix = "wallet:summary:"

// Notifier receives ledger events worth surfacing to the user.
// May be nil.
type Notifier interface {
	WalletCredited(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, transactionID uuid.UUID)
}

// Service validates mutations before they reach the ledger engine and
// owns the read-side summary caching.
type Service struct {
	repo     *Repository
	cache    *cache.Cache
	cacheTTL time.Duration
	notifier Notifier
}

// NewService creates the wallet service
func NewService(repo *Repository, c *cache.Cache, cacheTTL time.Duration, notifier Notifier) *Service {
	return &Service{repo: repo, cache: c, cacheTTL: cacheTTL, notifier: notifier}
}

// Apply validates and executes one balance mutation. A missing reference id
// is replaced with a fresh UUID so every transaction stays correlatable;
// a missing description falls back to the per-type default.
func (s *Service) Apply(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, txType TransactionType, description, referenceID string) (*TransactionResult, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !txType.Valid() {
		return nil, ErrInvalidTransactionType
	}
	if description == "" {
		description = txType.DefaultDescription()
	}
	if referenceID == "" {
		referenceID = uuid.NewString()
	}

	result, err := s.repo.Apply(ctx, userID, amount, txType, description, referenceID)
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, userID)

	log.Info().
		Str("user_id", userID.String()).
		Str("transaction_id", result.TransactionID.String()).
		Str("type", string(txType)).
		Str("amount", amount.String()).
		Str("reference_id", referenceID).
		Msg("wallet mutation applied")

	if txType == TransactionTypeCredit && s.notifier != nil {
		s.notifier.WalletCredited(ctx, userID, amount, result.TransactionID)
	}

	return result, nil
}

// Credit adds funds to the user's wallet
func (s *Service) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description, referenceID string) (*TransactionResult, error) {
	return s.Apply(ctx, userID, amount, TransactionTypeCredit, description, referenceID)
}

// Debit removes funds from the user's wallet, failing on insufficient balance
func (s *Service) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description, referenceID string) (*TransactionResult, error) {
	return s.Apply(ctx, userID, amount, TransactionTypeDebit, description, referenceID)
}

// ResumeDebit rebuilds the result of an already-recorded debit so a caller
// interrupted after the debit committed can finish its side of the work.
// Balances reflect the wallet as it stands now, not as of the original
// debit.
func (s *Service) ResumeDebit(ctx context.Context, userID uuid.UUID, referenceID string) (*TransactionResult, error) {
	t, err := s.repo.GetTransactionByReference(ctx, userID, TransactionTypeDebit, referenceID)
	if err != nil {
		return nil, err
	}

	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &TransactionResult{
		TransactionID:   t.ID,
		UserID:          t.UserID,
		PreviousBalance: balance.Add(t.Amount),
		NewBalance:      balance,
		Amount:          t.Amount,
		Type:            t.Type,
		Description:     t.Description,
		ReferenceID:     t.ReferenceID,
		CreatedAt:       t.CreatedAt,
	}, nil
}

// GetSummary returns the balance plus a transaction history page,
// lazily creating the wallet on first access. Pages are served from
// the redis cache when available.
func (s *Service) GetSummary(ctx context.Context, userID uuid.UUID, limit, offset int) (*Summary, error) {
	key := s.summaryKey(userID, limit, offset)
	var cached Summary
	if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.repo.ListTransactions(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Balance:      balance,
		Transactions: transactions,
		Pagination: Pagination{
			Total:  total,
			Offset: offset,
			Limit:  limit,
		},
	}

	if err := s.cache.SetJSON(ctx, key, summary, s.cacheTTL); err != nil {
		log.Warn().Err(err).Msg("wallet summary cache write failed")
	}

	return summary, nil
}

func (s *Service) summaryKey(userID uuid.UUID, limit, offset int) string {
	return fmt.Sprintf("%s%s:%d:%d", summaryCachePrefix, userID, limit, offset)
}

func (s *Service) invalidateSummary(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.DeleteByPrefix(ctx, summaryCachePrefix+userID.String()); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("wallet summary cache invalidation failed")
	}
}
