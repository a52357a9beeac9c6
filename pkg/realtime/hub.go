package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/grsix/outreach/pkg/logger"
)

// Event is one dashboard push, typically a campaign-stats snapshot.
type Event struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
	Time    string `json:"time"`
}

const subscriberBuffer = 16

// Hub fans events out to connected dashboard websockets. Publishing never
// blocks; a subscriber that cannot keep up loses events, not the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]chan Event
	logger logger.Logger
}

// NewHub creates an empty hub.
func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.Default()
	}
	return &Hub{subs: make(map[string]chan Event), logger: log}
}

// Publish sends an event to every subscriber. Slow subscribers are skipped.
func (h *Hub) Publish(event string, payload any) {
	evt := Event{
		Event:   event,
		Payload: payload,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		select {
		case ch <- evt:
		default:
			h.logger.Warn("dropping event for slow subscriber", "subscriber", id, "event", event)
		}
	}
}

// Subscribe registers a new listener and returns its id and channel.
func (h *Hub) Subscribe() (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// SubscriberCount reports the number of connected listeners.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// ServeWS upgrades the request and streams events until the client leaves.
func (h *Hub) ServeWS(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		return nil
	}
	defer conn.Close(websocket.StatusInternalError, "closed")

	id, events := h.Subscribe()
	defer h.Unsubscribe(id)
	h.logger.Info("dashboard subscriber connected", "subscriber", id)

	ctx := c.Request().Context()
	if err := h.stream(ctx, conn, events); err != nil {
		conn.Close(websocket.StatusInternalError, "stream error")
		return nil
	}
	conn.Close(websocket.StatusNormalClosure, "done")
	return nil
}

type wsWriter interface {
	Write(ctx context.Context, msgType websocket.MessageType, data []byte) error
}

func (h *Hub) stream(ctx context.Context, writer wsWriter, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				return err
			}
			if err := writer.Write(ctx, websocket.MessageText, payload); err != nil {
				return err
			}
		}
	}
}
