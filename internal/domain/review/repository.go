package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository persists reviews
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates the review repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a review. One review per booking is enforced by a
// unique index on booking_id.
func (r *Repository) Create(ctx context.Context, rv *Review) error {
	query := `
		INSERT INTO reviews (id, mechanic_id, reviewer_id, booking_id, rating, comment, created_at)
		VALUES (:id, :mechanic_id, :reviewer_id, :booking_id, :rating, :comment, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, rv); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyReviewed
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// ListByMechanic returns a mechanic's reviews, newest first
func (r *Repository) ListByMechanic(ctx context.Context, mechanicID uuid.UUID, limit, offset int) ([]Review, int, error) {
	reviews := []Review{}
	query := `
		SELECT id, mechanic_id, reviewer_id, booking_id, rating, comment, created_at
		FROM reviews
		WHERE mechanic_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &reviews, query, mechanicID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM reviews WHERE mechanic_id = $1`, mechanicID); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	return reviews, total, nil
}

// SummaryByMechanic returns the mechanic's average rating and count
func (r *Repository) SummaryByMechanic(ctx context.Context, mechanicID uuid.UUID) (*Summary, error) {
	var s Summary
	query := `
		SELECT COALESCE(ROUND(AVG(rating)::numeric, 2), 0) AS average_rating,
		       COUNT(*) AS review_count
		FROM reviews
		WHERE mechanic_id = $1`

	if err := r.db.GetContext(ctx, &s, query, mechanicID); err != nil {
		return nil, fmt.Errorf("review summary: %w", err)
	}
	return &s, nil
}
