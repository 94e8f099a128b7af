package message

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Without Redis the hub falls back to in-process fanout, which is what
// these tests exercise.

func TestHubLocalFanout(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	bookingID := uuid.New()
	senderID := uuid.New()
	receiverID := uuid.New()

	conn := &Connection{UserID: receiverID, Send: make(chan []byte, 8)}
	hub.Register(conn)
	hub.SubscribeToBooking(bookingID, receiverID)

	hub.BroadcastToBooking(bookingID, &WSEvent{
		Type:      EventNewMessage,
		BookingID: bookingID,
		SenderID:  senderID,
	})

	select {
	case raw := <-conn.Send:
		var event WSEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if event.Type != EventNewMessage || event.BookingID != bookingID || event.SenderID != senderID {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestHubIgnoresUnsubscribed(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	conn := &Connection{UserID: uuid.New(), Send: make(chan []byte, 8)}
	hub.Register(conn)

	// connected but not subscribed to this booking
	hub.BroadcastToBooking(uuid.New(), &WSEvent{Type: EventNewMessage})

	select {
	case raw := <-conn.Send:
		t.Fatalf("unexpected delivery: %s", raw)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	conn := &Connection{UserID: uuid.New(), Send: make(chan []byte, 8)}
	hub.Register(conn)
	hub.Unregister(conn)

	select {
	case _, ok := <-conn.Send:
		if ok {
			t.Fatal("expected closed channel, got a message")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}
