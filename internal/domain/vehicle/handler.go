package vehicle

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carfix/carfix-api/internal/middleware"
	"github.com/carfix/carfix-api/internal/pkg/response"
	"github.com/carfix/carfix-api/internal/pkg/validator"
)

// Handler exposes vehicle CRUD, always scoped to the authenticated owner
type Handler struct {
	repo *Repository
}

// NewHandler creates the vehicle handler
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Create handles POST /vehicles
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req UpsertRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	now := time.Now()
	v := &Vehicle{
		ID:        uuid.New(),
		OwnerID:   userID,
		Make:      req.Make,
		Model:     req.Model,
		Year:      req.Year,
		Plate:     strings.ToUpper(strings.TrimSpace(req.Plate)),
		VIN:       sql.NullString{String: req.VIN, Valid: req.VIN != ""},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.repo.Create(r.Context(), v); err != nil {
		if errors.Is(err, ErrDuplicatePlate) {
			response.Conflict(w, "DUPLICATE_PLATE", "A vehicle with this plate is already registered")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.Created(w, v.ToResponse())
}

// List handles GET /vehicles
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	vehicles, err := h.repo.ListByOwner(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	out := make([]*VehicleResponse, 0, len(vehicles))
	for i := range vehicles {
		out = append(out, vehicles[i].ToResponse())
	}
	response.OK(w, out)
}

// Get handles GET /vehicles/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	v, ok := h.ownedVehicle(w, r)
	if !ok {
		return
	}
	response.OK(w, v.ToResponse())
}

// Update handles PUT /vehicles/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	v, ok := h.ownedVehicle(w, r)
	if !ok {
		return
	}

	var req UpsertRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	v.Make = req.Make
	v.Model = req.Model
	v.Year = req.Year
	v.Plate = strings.ToUpper(strings.TrimSpace(req.Plate))
	v.VIN = sql.NullString{String: req.VIN, Valid: req.VIN != ""}

	if err := h.repo.Update(r.Context(), v); err != nil {
		if errors.Is(err, ErrDuplicatePlate) {
			response.Conflict(w, "DUPLICATE_PLATE", "A vehicle with this plate is already registered")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.OK(w, v.ToResponse())
}

// Delete handles DELETE /vehicles/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	v, ok := h.ownedVehicle(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), v.ID); err != nil {
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}

// ownedVehicle loads the path vehicle and enforces ownership
func (h *Handler) ownedVehicle(w http.ResponseWriter, r *http.Request) (*Vehicle, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid vehicle id")
		return nil, false
	}

	v, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrVehicleNotFound) {
			response.NotFound(w, "Vehicle not found")
		} else {
			response.InternalError(w)
		}
		return nil, false
	}

	if v.OwnerID != userID {
		response.Forbidden(w, "You do not own this vehicle")
		return nil, false
	}

	return v, true
}

// Routes returns the vehicle router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}
