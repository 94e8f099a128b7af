package review

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Review is a customer's rating of a mechanic for one completed booking
type Review struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	MechanicID uuid.UUID      `db:"mechanic_id" json:"mechanic_id"`
	ReviewerID uuid.UUID      `db:"reviewer_id" json:"reviewer_id"`
	BookingID  uuid.UUID      `db:"booking_id" json:"booking_id"`
	Rating     int            `db:"rating" json:"rating"`
	Comment    sql.NullString `db:"comment" json:"-"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// Response is the JSON shape of a review
type Response struct {
	ID         uuid.UUID `json:"id"`
	MechanicID uuid.UUID `json:"mechanic_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToResponse converts the review for JSON output
func (r *Review) ToResponse() Response {
	resp := Response{
		ID:         r.ID,
		MechanicID: r.MechanicID,
		ReviewerID: r.ReviewerID,
		BookingID:  r.BookingID,
		Rating:     r.Rating,
		CreatedAt:  r.CreatedAt,
	}
	if r.Comment.Valid {
		resp.Comment = &r.Comment.String
	}
	return resp
}

// CreateRequest is the review creation payload
type CreateRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// Summary aggregates a mechanic's ratings
type Summary struct {
	AverageRating decimal.Decimal `db:"average_rating" json:"average_rating"`
	ReviewCount   int             `db:"review_count" json:"review_count"`
}
