package vehicle

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Vehicle represents a customer's car on record
type Vehicle struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	OwnerID   uuid.UUID      `db:"owner_id" json:"owner_id"`
	Make      string         `db:"make" json:"make"`
	Model     string         `db:"model" json:"model"`
	Year      int            `db:"year" json:"year"`
	Plate     string         `db:"plate" json:"plate"`
	VIN       sql.NullString `db:"vin" json:"-"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// VehicleResponse is the public view of a vehicle
type VehicleResponse struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Make      string `json:"make"`
	Model     string `json:"model"`
	Year      int    `json:"year"`
	Plate     string `json:"plate"`
	VIN       string `json:"vin,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ToResponse converts entity to response
func (v *Vehicle) ToResponse() *VehicleResponse {
	resp := &VehicleResponse{
		ID:        v.ID.String(),
		OwnerID:   v.OwnerID.String(),
		Make:      v.Make,
		Model:     v.Model,
		Year:      v.Year,
		Plate:     v.Plate,
		CreatedAt: v.CreatedAt.Format(time.RFC3339),
	}
	if v.VIN.Valid {
		resp.VIN = v.VIN.String
	}
	return resp
}

// UpsertRequest is the create/update payload
type UpsertRequest struct {
	Make  string `json:"make" validate:"required,min=1,max=60"`
	Model string `json:"model" validate:"required,min=1,max=60"`
	Year  int    `json:"year" validate:"required,gte=1950,lte=2100"`
	Plate string `json:"plate" validate:"required,min=2,max=16"`
	VIN   string `json:"vin" validate:"omitempty,len=17"`
}
