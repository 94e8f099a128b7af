package auth

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/carfix/carfix-api/internal/domain/user"
	"github.com/carfix/carfix-api/internal/middleware"
	"github.com/carfix/carfix-api/internal/pkg/jwt"
	"github.com/carfix/carfix-api/internal/pkg/response"
	"github.com/carfix/carfix-api/internal/pkg/validator"
)

// Handler exposes the auth HTTP endpoints
type Handler struct {
	svc *Service
}

// NewHandler creates the auth handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	tokens, err := h.svc.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailAlreadyExists):
			response.Conflict(w, "EMAIL_EXISTS", "An account with this email already exists")
		case errors.Is(err, ErrInvalidRole):
			response.BadRequest(w, "role must be customer or mechanic")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, tokens)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	tokens, err := h.svc.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, "Invalid email or password")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.OK(w, tokens)
}

// Refresh handles POST /auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	tokens, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrExpiredToken):
			response.Unauthorized(w, "Refresh token expired")
		case errors.Is(err, jwt.ErrInvalidToken), errors.Is(err, user.ErrUserNotFound):
			response.Unauthorized(w, "Invalid refresh token")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, tokens)
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	me, err := h.svc.Me(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.NotFound(w, "User not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.OK(w, me)
}
