package profile

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository handles profile database operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new profile repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetCustomer returns a customer profile by user id
func (r *Repository) GetCustomer(ctx context.Context, userID uuid.UUID) (*CustomerProfile, error) {
	var p CustomerProfile
	err := r.db.GetContext(ctx, &p, `SELECT * FROM customer_profiles WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertCustomer creates or updates a customer profile
func (r *Repository) UpsertCustomer(ctx context.Context, p *CustomerProfile) error {
	query := `
		INSERT INTO customer_profiles (user_id, phone, city, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET phone = EXCLUDED.phone, city = EXCLUDED.city, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, p.UserID, p.Phone, p.City, time.Now())
	return err
}

// GetMechanic returns a mechanic profile by user id
func (r *Repository) GetMechanic(ctx context.Context, userID uuid.UUID) (*MechanicProfile, error) {
	var p MechanicProfile
	err := r.db.GetContext(ctx, &p, `SELECT * FROM mechanic_profiles WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertMechanic creates or updates a mechanic profile
func (r *Repository) UpsertMechanic(ctx context.Context, p *MechanicProfile) error {
	query := `
		INSERT INTO mechanic_profiles (user_id, shop_name, bio, specialties, hourly_rate, city, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET shop_name = EXCLUDED.shop_name,
		    bio = EXCLUDED.bio,
		    specialties = EXCLUDED.specialties,
		    hourly_rate = EXCLUDED.hourly_rate,
		    city = EXCLUDED.city,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, p.UserID, p.ShopName, p.Bio, p.Specialties, p.HourlyRate, p.City, time.Now())
	return err
}

// GetMechanicListing returns one mechanic with its review aggregate
func (r *Repository) GetMechanicListing(ctx context.Context, userID uuid.UUID) (*MechanicListing, error) {
	query := `
		SELECT mp.*, u.full_name,
		       COALESCE(AVG(rv.rating), 0) AS average_rating,
		       COUNT(rv.id) AS review_count
		FROM mechanic_profiles mp
		JOIN users u ON u.id = mp.user_id
		LEFT JOIN reviews rv ON rv.mechanic_id = mp.user_id
		WHERE mp.user_id = $1
		GROUP BY mp.user_id, mp.shop_name, mp.bio, mp.specialties, mp.hourly_rate, mp.city, mp.created_at, mp.updated_at, u.full_name
	`
	var m MechanicListing
	err := r.db.GetContext(ctx, &m, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMechanics returns a filtered page of mechanic listings plus the total count
func (r *Repository) ListMechanics(ctx context.Context, q ListMechanicsQuery) ([]MechanicListing, int, error) {
	query := `
		SELECT mp.*, u.full_name,
		       COALESCE(AVG(rv.rating), 0) AS average_rating,
		       COUNT(rv.id) AS review_count
		FROM mechanic_profiles mp
		JOIN users u ON u.id = mp.user_id
		LEFT JOIN reviews rv ON rv.mechanic_id = mp.user_id
		WHERE ($1 = '' OR mp.city ILIKE $1)
		  AND ($2 = '' OR $2 = ANY(mp.specialties))
		GROUP BY mp.user_id, mp.shop_name, mp.bio, mp.specialties, mp.hourly_rate, mp.city, mp.created_at, mp.updated_at, u.full_name
		ORDER BY average_rating DESC, review_count DESC
		LIMIT $3 OFFSET $4
	`
	listings := []MechanicListing{}
	if err := r.db.SelectContext(ctx, &listings, query, q.City, q.Specialty, q.Limit, q.Offset); err != nil {
		return nil, 0, err
	}

	countQuery := `
		SELECT COUNT(*) FROM mechanic_profiles mp
		WHERE ($1 = '' OR mp.city ILIKE $1)
		  AND ($2 = '' OR $2 = ANY(mp.specialties))
	`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, q.City, q.Specialty); err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}
