package profile

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carfix/carfix-api/internal/domain/user"
	"github.com/carfix/carfix-api/internal/middleware"
	"github.com/carfix/carfix-api/internal/pkg/response"
	"github.com/carfix/carfix-api/internal/pkg/validator"
)

// Handler exposes profile endpoints
type Handler struct {
	repo *Repository
}

// NewHandler creates the profile handler
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// GetMe handles GET /profiles/me; the response shape depends on the role
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	switch middleware.GetRole(r.Context()) {
	case string(user.RoleMechanic):
		p, err := h.repo.GetMechanic(r.Context(), userID)
		if err != nil {
			h.profileError(w, err)
			return
		}
		response.OK(w, p.ToResponse())
	default:
		p, err := h.repo.GetCustomer(r.Context(), userID)
		if err != nil {
			h.profileError(w, err)
			return
		}
		response.OK(w, p.ToResponse())
	}
}

// UpdateMe handles PUT /profiles/me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if middleware.GetRole(r.Context()) == string(user.RoleMechanic) {
		h.updateMechanic(w, r, userID)
		return
	}
	h.updateCustomer(w, r, userID)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req UpdateCustomerRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	p := &CustomerProfile{
		UserID:    userID,
		Phone:     sql.NullString{String: req.Phone, Valid: req.Phone != ""},
		City:      sql.NullString{String: req.City, Valid: req.City != ""},
		UpdatedAt: time.Now(),
	}
	if err := h.repo.UpsertCustomer(r.Context(), p); err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, p.ToResponse())
}

func (h *Handler) updateMechanic(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req UpdateMechanicRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}
	if req.HourlyRate.IsNegative() {
		response.BadRequest(w, "hourly_rate must not be negative")
		return
	}

	p := &MechanicProfile{
		UserID:      userID,
		ShopName:    req.ShopName,
		Bio:         sql.NullString{String: req.Bio, Valid: req.Bio != ""},
		Specialties: req.Specialties,
		HourlyRate:  req.HourlyRate,
		City:        req.City,
		UpdatedAt:   time.Now(),
	}
	if err := h.repo.UpsertMechanic(r.Context(), p); err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, p.ToResponse())
}

// ListMechanics handles GET /mechanics
func (h *Handler) ListMechanics(w http.ResponseWriter, r *http.Request) {
	q := ListMechanicsQuery{
		City:      r.URL.Query().Get("city"),
		Specialty: r.URL.Query().Get("specialty"),
		Limit:     queryInt(r, "limit", 20),
		Offset:    queryInt(r, "offset", 0),
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	listings, total, err := h.repo.ListMechanics(r.Context(), q)
	if err != nil {
		response.InternalError(w)
		return
	}

	out := make([]*MechanicResponse, 0, len(listings))
	for i := range listings {
		out = append(out, listings[i].ToResponse())
	}
	response.WithMeta(w, out, response.Meta{Total: total, Offset: q.Offset, Limit: q.Limit})
}

// GetMechanic handles GET /mechanics/{id}
func (h *Handler) GetMechanic(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid mechanic id")
		return
	}

	m, err := h.repo.GetMechanicListing(r.Context(), id)
	if err != nil {
		h.profileError(w, err)
		return
	}
	response.OK(w, m.ToResponse())
}

func (h *Handler) profileError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrProfileNotFound) {
		response.NotFound(w, "Profile not found")
	} else {
		response.InternalError(w)
	}
}

// Routes returns the profile router (mounted at /profiles)
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/me", h.GetMe)
	r.Put("/me", h.UpdateMe)
	return r
}

// MechanicRoutes returns the public mechanic directory router (mounted
// at /mechanics). Domains that expose routes per mechanic (reviews)
// register themselves via subroutes.
func (h *Handler) MechanicRoutes(subroutes ...func(chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListMechanics)
	r.Get("/{id}", h.GetMechanic)
	for _, sub := range subroutes {
		sub(r)
	}
	return r
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
