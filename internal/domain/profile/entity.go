package profile

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// CustomerProfile holds customer-facing profile fields
type CustomerProfile struct {
	UserID    uuid.UUID      `db:"user_id" json:"user_id"`
	Phone     sql.NullString `db:"phone" json:"-"`
	City      sql.NullString `db:"city" json:"-"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// MechanicProfile holds the mechanic's public shop listing
type MechanicProfile struct {
	UserID      uuid.UUID       `db:"user_id" json:"user_id"`
	ShopName    string          `db:"shop_name" json:"shop_name"`
	Bio         sql.NullString  `db:"bio" json:"-"`
	Specialties pq.StringArray  `db:"specialties" json:"specialties"`
	HourlyRate  decimal.Decimal `db:"hourly_rate" json:"hourly_rate"`
	City        string          `db:"city" json:"city"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// MechanicListing is a mechanic profile joined with its review aggregate
type MechanicListing struct {
	MechanicProfile
	FullName      string  `db:"full_name" json:"full_name"`
	AverageRating float64 `db:"average_rating" json:"average_rating"`
	ReviewCount   int     `db:"review_count" json:"review_count"`
}

// CustomerResponse is the API view of a customer profile
type CustomerResponse struct {
	UserID string `json:"user_id"`
	Phone  string `json:"phone,omitempty"`
	City   string `json:"city,omitempty"`
}

// ToResponse converts entity to response
func (p *CustomerProfile) ToResponse() *CustomerResponse {
	resp := &CustomerResponse{UserID: p.UserID.String()}
	if p.Phone.Valid {
		resp.Phone = p.Phone.String
	}
	if p.City.Valid {
		resp.City = p.City.String
	}
	return resp
}

// MechanicResponse is the API view of a mechanic profile
type MechanicResponse struct {
	UserID        string          `json:"user_id"`
	ShopName      string          `json:"shop_name"`
	Bio           string          `json:"bio,omitempty"`
	Specialties   []string        `json:"specialties"`
	HourlyRate    decimal.Decimal `json:"hourly_rate"`
	City          string          `json:"city"`
	FullName      string          `json:"full_name,omitempty"`
	AverageRating float64         `json:"average_rating"`
	ReviewCount   int             `json:"review_count"`
}

// ToResponse converts entity to response
func (p *MechanicProfile) ToResponse() *MechanicResponse {
	resp := &MechanicResponse{
		UserID:      p.UserID.String(),
		ShopName:    p.ShopName,
		Specialties: p.Specialties,
		HourlyRate:  p.HourlyRate,
		City:        p.City,
	}
	if p.Bio.Valid {
		resp.Bio = p.Bio.String
	}
	if resp.Specialties == nil {
		resp.Specialties = []string{}
	}
	return resp
}

// ToResponse includes the review aggregate
func (m *MechanicListing) ToResponse() *MechanicResponse {
	resp := m.MechanicProfile.ToResponse()
	resp.FullName = m.FullName
	resp.AverageRating = m.AverageRating
	resp.ReviewCount = m.ReviewCount
	return resp
}
