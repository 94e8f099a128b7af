package message

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// EventType for websocket events
type EventType string

const (
	EventNewMessage EventType = "new_message"
	EventRead       EventType = "messages_read"
)

const bookingChannelPrefix = "chat:booking:"

// WSEvent is the payload fanned out to booking participants
type WSEvent struct {
	Type      EventType `json:"type"`
	BookingID uuid.UUID `json:"booking_id"`
	SenderID  uuid.UUID `json:"sender_id,omitempty"`
	Message   *Message  `json:"message,omitempty"`
}

// Connection is a single websocket client
type Connection struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
}

// Hub fans booking events out to connected clients. With Redis it
// publishes through pub/sub so every server instance delivers to its
// local clients; without Redis it degrades to single-instance fanout.
type Hub struct {
	connections   map[uuid.UUID]map[*Connection]bool
	localBookings map[uuid.UUID]map[uuid.UUID]bool

	redis  *redis.Client
	pubsub *redis.PubSub

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates the hub. redisClient may be nil.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		connections:   make(map[uuid.UUID]map[*Connection]bool),
		localBookings: make(map[uuid.UUID]map[uuid.UUID]bool),
		redis:         redisClient,
		register:      make(chan *Connection),
		unregister:    make(chan *Connection),
		ctx:           ctx,
		cancel:        cancel,
	}

	if redisClient != nil {
		h.pubsub = redisClient.PSubscribe(ctx, bookingChannelPrefix+"*")
	}

	return h
}

// Run starts the hub loop (call in a goroutine)
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.connections[conn.UserID] == nil {
				h.connections[conn.UserID] = make(map[*Connection]bool)
			}
			h.connections[conn.UserID][conn] = true
			h.mu.Unlock()
			log.Debug().Str("user_id", conn.UserID.String()).Msg("websocket client connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.connections[conn.UserID]; ok {
				if _, exists := conns[conn]; exists {
					delete(conns, conn)
					close(conn.Send)
				}
				if len(conns) == 0 {
					delete(h.connections, conn.UserID)
					for bookingID, users := range h.localBookings {
						delete(users, conn.UserID)
						if len(users) == 0 {
							delete(h.localBookings, bookingID)
						}
					}
				}
			}
			h.mu.Unlock()
			log.Debug().Str("user_id", conn.UserID.String()).Msg("websocket client disconnected")
		}
	}
}

func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()

	for {
		select {
		case <-h.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}

			bookingID, err := uuid.Parse(strings.TrimPrefix(msg.Channel, bookingChannelPrefix))
			if err != nil {
				continue
			}

			var event WSEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}

			h.broadcastLocal(bookingID, &event)
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// SubscribeToBooking routes future booking events to the user's local
// connections
func (h *Hub) SubscribeToBooking(bookingID, userID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.localBookings[bookingID] == nil {
		h.localBookings[bookingID] = make(map[uuid.UUID]bool)
	}
	h.localBookings[bookingID][userID] = true
}

// BroadcastToBooking delivers an event to all participants across all
// instances
func (h *Hub) BroadcastToBooking(bookingID uuid.UUID, event *WSEvent) {
	if h.redis != nil {
		data, err := json.Marshal(event)
		if err != nil {
			log.Error().Err(err).Msg("marshal websocket event")
			return
		}
		if err := h.redis.Publish(h.ctx, bookingChannelPrefix+bookingID.String(), data).Err(); err != nil {
			log.Error().Err(err).Msg("redis publish failed, falling back to local fanout")
			h.broadcastLocal(bookingID, event)
		}
		return
	}

	h.broadcastLocal(bookingID, event)
}

func (h *Hub) broadcastLocal(bookingID uuid.UUID, event *WSEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users, ok := h.localBookings[bookingID]
	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	for userID := range users {
		for conn := range h.connections[userID] {
			select {
			case conn.Send <- data:
			default:
				// buffer full, drop
				log.Warn().Str("user_id", userID.String()).Msg("websocket send buffer full")
			}
		}
	}
}

// ConnectionCount returns the number of local connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.connections {
		total += len(conns)
	}
	return total
}

// Shutdown stops the hub and closes the pub/sub subscription
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}
