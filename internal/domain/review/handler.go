package review

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carfix/carfix-api/internal/domain/booking"
	"github.com/carfix/carfix-api/internal/middleware"
	"github.com/carfix/carfix-api/internal/pkg/response"
	"github.com/carfix/carfix-api/internal/pkg/validator"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

// Handler exposes the review HTTP surface
type Handler struct {
	svc *Service
}

// NewHandler creates the review handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /bookings/{id}/review
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w, "booking not found")
		return
	}

	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	rv, err := h.svc.Create(r.Context(), userID, bookingID, &req)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			response.NotFound(w, "booking not found")
		case errors.Is(err, booking.ErrNotParticipant):
			response.Forbidden(w, "only the booking's customer may review it")
		case errors.Is(err, ErrBookingNotCompleted):
			response.Conflict(w, "BOOKING_NOT_COMPLETED", "only completed bookings can be reviewed")
		case errors.Is(err, ErrAlreadyReviewed):
			response.Conflict(w, "ALREADY_REVIEWED", "this booking already has a review")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, rv.ToResponse())
}

// ListByMechanic handles GET /mechanics/{id}/reviews
func (h *Handler) ListByMechanic(w http.ResponseWriter, r *http.Request) {
	mechanicID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w, "mechanic not found")
		return
	}

	limit := parseQueryInt(r, "limit", defaultLimit)
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	offset := parseQueryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	reviews, total, summary, err := h.svc.ListByMechanic(r.Context(), mechanicID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]Response, 0, len(reviews))
	for i := range reviews {
		items = append(items, reviews[i].ToResponse())
	}

	response.WithMeta(w, map[string]interface{}{
		"reviews": items,
		"summary": summary,
	}, response.Meta{Total: total, Offset: offset, Limit: limit})
}

func parseQueryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// BookingRoutes registers the review route that lives under /bookings
func (h *Handler) BookingRoutes() func(chi.Router) {
	return func(r chi.Router) {
		r.With(middleware.RequireCustomer()).Post("/{id}/review", h.Create)
	}
}

// MechanicRoutes registers the public review routes under /mechanics
func (h *Handler) MechanicRoutes() func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/{id}/reviews", h.ListByMechanic)
	}
}
