package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carfix/carfix-api/internal/domain/wallet"
	"github.com/carfix/carfix-api/internal/middleware"
	"github.com/carfix/carfix-api/internal/pkg/response"
	"github.com/carfix/carfix-api/internal/pkg/validator"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

// Handler exposes the booking HTTP surface
type Handler struct {
	svc *Service
}

// NewHandler creates the booking handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /bookings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetUserID(r.Context())

	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	b, err := h.svc.Create(r.Context(), customerID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, b)
}

// List handles GET /bookings
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	limit := parseQueryInt(r, "limit", defaultLimit)
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	offset := parseQueryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	bookings, total, err := h.svc.List(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.WithMeta(w, bookings, response.Meta{Total: total, Offset: offset, Limit: limit})
}

// Get handles GET /bookings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w, "booking not found")
		return
	}

	b, err := h.svc.Get(r.Context(), userID, bookingID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, b)
}

// ChangeStatus handles PATCH /bookings/{id}/status
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	role := middleware.GetRole(r.Context())

	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w, "booking not found")
		return
	}

	var req StatusRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	b, err := h.svc.ChangeStatus(r.Context(), userID, role, bookingID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, b)
}

// Pay handles POST /bookings/{id}/pay
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w, "booking not found")
		return
	}

	result, err := h.svc.Pay(r.Context(), userID, bookingID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, result)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		response.NotFound(w, "booking not found")
	case errors.Is(err, ErrNotParticipant):
		response.Forbidden(w, "you are not part of this booking")
	case errors.Is(err, ErrMechanicNotFound):
		response.Error(w, http.StatusBadRequest, "MECHANIC_NOT_FOUND", "mechanic not found")
	case errors.Is(err, ErrVehicleNotOwned):
		response.Error(w, http.StatusBadRequest, "VEHICLE_NOT_OWNED", "vehicle does not belong to you")
	case errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, "INVALID_TRANSITION", "status transition not allowed")
	case errors.Is(err, ErrTransitionByRole):
		response.Forbidden(w, "your role may not perform this transition")
	case errors.Is(err, ErrQuoteRequired):
		response.Error(w, http.StatusBadRequest, "QUOTE_REQUIRED", "confirming a booking requires a positive quoted_price")
	case errors.Is(err, ErrNotPayable):
		response.Conflict(w, "NOT_PAYABLE", "booking must be completed and quoted before payment")
	case errors.Is(err, ErrAlreadyPaid):
		response.Conflict(w, "ALREADY_PAID", "booking is already paid")
	case errors.Is(err, wallet.ErrInsufficientFunds):
		response.Error(w, http.StatusBadRequest, "INSUFFICIENT_FUNDS", "wallet balance is too low for this payment")
	default:
		response.InternalError(w)
	}
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

// Routes returns the booking router. Other domains that hang routes off
// a booking (messages, reviews) register themselves via subroutes.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler, subroutes ...func(chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.With(middleware.RequireCustomer()).Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.ChangeStatus)
	r.With(middleware.RequireCustomer()).Post("/{id}/pay", h.Pay)

	for _, sub := range subroutes {
		sub(r)
	}

	return r
}
