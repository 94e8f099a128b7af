package vehicle

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository handles vehicle database operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new vehicle repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new vehicle
func (r *Repository) Create(ctx context.Context, v *Vehicle) error {
	query := `
		INSERT INTO vehicles (id, owner_id, make, model, year, plate, vin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		v.ID,
		v.OwnerID,
		v.Make,
		v.Model,
		v.Year,
		v.Plate,
		v.VIN,
		v.CreatedAt,
		v.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicatePlate
		}
		return err
	}
	return nil
}

// GetByID returns a vehicle by id
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	var v Vehicle
	err := r.db.GetContext(ctx, &v, `SELECT * FROM vehicles WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListByOwner returns all vehicles owned by the user, newest first
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Vehicle, error) {
	query := `SELECT * FROM vehicles WHERE owner_id = $1 ORDER BY created_at DESC`
	vehicles := []Vehicle{}
	err := r.db.SelectContext(ctx, &vehicles, query, ownerID)
	return vehicles, err
}

// Update rewrites the mutable fields of a vehicle
func (r *Repository) Update(ctx context.Context, v *Vehicle) error {
	query := `
		UPDATE vehicles
		SET make = $1, model = $2, year = $3, plate = $4, vin = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query, v.Make, v.Model, v.Year, v.Plate, v.VIN, v.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicatePlate
		}
	}
	return err
}

// Delete removes a vehicle
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	return err
}
