package message

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/carfix/carfix-api/internal/domain/booking"
	"github.com/carfix/carfix-api/internal/middleware"
	"github.com/carfix/carfix-api/internal/pkg/response"
	"github.com/carfix/carfix-api/internal/pkg/validator"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Handler exposes the messaging HTTP and websocket surface
type Handler struct {
	svc      *Service
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler creates the message handler
func NewHandler(svc *Service, hub *Hub) *Handler {
	return &Handler{
		svc: svc,
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// List handles GET /bookings/{id}/messages
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w, "booking not found")
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

	messages, total, err := h.svc.List(r.Context(), userID, bookingID, limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.WithMeta(w, messages, response.Meta{Total: total, Offset: offset, Limit: limit})
}

// Send handles POST /bookings/{id}/messages
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w, "booking not found")
		return
	}

	var req SendRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	m, err := h.svc.Send(r.Context(), userID, bookingID, req.Content)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, m)
}

// MarkRead handles POST /bookings/{id}/messages/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w, "booking not found")
		return
	}

	if err := h.svc.MarkRead(r.Context(), userID, bookingID); err != nil {
		h.writeError(w, err)
		return
	}

	response.NoContent(w)
}

// Unread handles GET /messages/unread
func (h *Handler) Unread(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	count, err := h.svc.UnreadCount(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]int{"unread_count": count})
}

// WebSocket handles GET /ws
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Connection{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.hub.Register(client)
	h.svc.SubscribeConnection(r.Context(), userID)

	go h.wsReader(client)
	go h.wsWriter(client)
}

func (h *Handler) wsReader(client *Connection) {
	defer func() {
		h.hub.Unregister(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", client.UserID.String()).Msg("websocket read error")
			}
			break
		}

		var event struct {
			Type      string    `json:"type"`
			BookingID uuid.UUID `json:"booking_id"`
		}
		if err := json.Unmarshal(raw, &event); err != nil {
			continue
		}

		switch event.Type {
		case "read":
			_ = h.svc.MarkRead(context.Background(), client.UserID, event.BookingID)
		case "subscribe":
			// joining a booking opened after the socket connected
			if _, err := h.svc.participantBooking(context.Background(), client.UserID, event.BookingID); err == nil {
				h.hub.SubscribeToBooking(event.BookingID, client.UserID)
			}
		}
	}
}

func (h *Handler) wsWriter(client *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrBookingNotFound):
		response.NotFound(w, "booking not found")
	case errors.Is(err, booking.ErrNotParticipant):
		response.Forbidden(w, "you are not part of this booking")
	case errors.Is(err, ErrBookingClosed):
		response.Conflict(w, "BOOKING_CLOSED", "cancelled bookings do not accept messages")
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

// BookingRoutes registers the message routes that live under /bookings
func (h *Handler) BookingRoutes() func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/{id}/messages", h.List)
		r.Post("/{id}/messages", h.Send)
		r.Post("/{id}/messages/read", h.MarkRead)
	}
}

// Routes returns the standalone /messages router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/unread", h.Unread)
	return r
}
