package booking

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Repository handles booking database operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new booking repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new booking
func (r *Repository) Create(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (id, customer_id, mechanic_id, vehicle_id, service, scheduled_at, status, is_paid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		b.ID,
		b.CustomerID,
		b.MechanicID,
		b.VehicleID,
		b.Service,
		b.ScheduledAt,
		b.Status,
		b.IsPaid,
		b.CreatedAt,
		b.UpdatedAt,
	)
	return err
}

// GetByID returns a booking by id
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, `SELECT * FROM bookings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByParticipant returns a page of bookings where the user is either
// the customer or the mechanic, newest first, plus the total count
func (r *Repository) ListByParticipant(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, int, error) {
	query := `
		SELECT * FROM bookings
		WHERE customer_id = $1 OR mechanic_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, userID, limit, offset); err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM bookings WHERE customer_id = $1 OR mechanic_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// UpdateStatus moves a booking to a new status, optionally setting the quote.
// The WHERE clause re-checks the current status so a concurrent transition
// cannot be overwritten.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, quote *decimal.Decimal) error {
	var quoted decimal.NullDecimal
	if quote != nil {
		quoted = decimal.NullDecimal{Decimal: *quote, Valid: true}
	}

	query := `
		UPDATE bookings
		SET status = $1,
		    quoted_price = COALESCE($2, quoted_price),
		    updated_at = NOW()
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, to, quoted, id, from)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// MarkPaid flags a completed booking as settled
func (r *Repository) MarkPaid(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET is_paid = true, updated_at = NOW() WHERE id = $1 AND NOT is_paid`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyPaid
	}
	return nil
}
