package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub manages push connections and room-based message delivery. Rooms are
// user-scoped ("user:{id}") or team-scoped ("team:{id}"). In production,
// backed by Redis pub/sub for multi-instance support.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]*Conn // room -> connID -> conn
	closed bool
	logger *slog.Logger
}

// Conn represents a push connection (abstracted for testability).
type Conn struct {
	ID     string
	UserID string
	Send   chan []byte
}

// Message is the payload sent over a connection.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[string]*Conn),
		logger: logger,
	}
}

// Join adds a connection to a room.
func (h *Hub) Join(room string, conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]*Conn)
	}
	h.rooms[room][conn.ID] = conn
}

// Leave removes a connection from a room.
func (h *Hub) Leave(room string, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[room]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Publish sends a message to all connections in a room. A full send buffer
// drops the message for that connection rather than blocking the caller.
func (h *Hub) Publish(room string, event string, data interface{}) {
	msg := Message{Event: event, Data: data}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("hub marshal error", "error", err, "room", room, "event", event)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	conns, ok := h.rooms[room]
	if !ok {
		return
	}

	for _, conn := range conns {
		select {
		case conn.Send <- payload:
		default:
			h.logger.Warn("hub send buffer full", "conn_id", conn.ID, "room", room)
		}
	}
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for _, conns := range h.rooms {
		count += len(conns)
	}
	return count
}

// Shutdown closes all connections and rejects further joins and publishes.
// A connection may sit in several rooms (its user room plus team rooms), so
// each send channel is closed exactly once.
func (h *Hub) Shutdown(_ context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true

	seen := make(map[*Conn]struct{})
	for room, conns := range h.rooms {
		for _, conn := range conns {
			if _, ok := seen[conn]; ok {
				continue
			}
			seen[conn] = struct{}{}
			close(conn.Send)
		}
		delete(h.rooms, room)
	}
}
