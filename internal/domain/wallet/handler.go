package wallet

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carfix/carfix-api/internal/middleware"
	"github.com/carfix/carfix-api/internal/pkg/response"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Handler exposes the wallet HTTP surface
type Handler struct {
	svc *Service
}

// NewHandler creates the wallet handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type mutateRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Type        string           `json:"type"`
	Description string           `json:"description"`
	ReferenceID string           `json:"reference_id"`
}

// Summary handles GET /wallet
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
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

	summary, err := h.svc.GetSummary(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, summary)
}

// Mutate handles POST /wallet. Malformed input is rejected here;
// ledger rules (insufficient funds, duplicate reference) are enforced
// by the engine and mapped to distinct client errors.
func (h *Handler) Mutate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req mutateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	if details := validateMutation(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	result, err := h.svc.Apply(r.Context(), userID, *req.Amount, TransactionType(req.Type), req.Description, req.ReferenceID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientFunds):
			response.Error(w, http.StatusBadRequest, "INSUFFICIENT_FUNDS", "insufficient wallet balance")
		case errors.Is(err, ErrInvalidAmount):
			response.ValidationError(w, map[string]string{"amount": "Value must be greater than 0"})
		case errors.Is(err, ErrInvalidTransactionType):
			response.ValidationError(w, map[string]string{"type": "Value must be credit or debit"})
		case errors.Is(err, ErrDuplicateReference):
			response.Conflict(w, "DUPLICATE_REFERENCE", "reference_id was already used for this transaction type")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, result)
}

// validateMutation checks the request shape before any storage access
func validateMutation(req *mutateRequest) map[string]string {
	details := make(map[string]string)
	if req.Amount == nil {
		details["amount"] = "This field is required"
	} else if !req.Amount.IsPositive() {
		details["amount"] = "Value must be greater than 0"
	}
	if req.Type == "" {
		details["type"] = "This field is required"
	} else if !TransactionType(req.Type).Valid() {
		details["type"] = "Invalid transaction type. Must be: credit or debit"
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// Routes returns the wallet router. Mounted at /wallet, chi answers
// 405 for any method other than GET and POST.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.Summary)
	r.Post("/", h.Mutate)
	return r
}

func parseQueryInt(r *http.Request, name string, fallback int) int {
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
