package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/rfoley/parkwatch/internal/livedata"
)

// Message is a real-time update pushed to connected clients.
type Message struct {
	Type      string           `json:"type"`
	FetchedAt time.Time        `json:"fetched_at,omitempty"`
	Stale     bool             `json:"stale,omitempty"`
	Entries   []livedata.Entry `json:"entries,omitempty"`
}

// WaitUpdate builds the broadcast message for a fresh wait-time snapshot.
func WaitUpdate(snap *livedata.Snapshot) Message {
	return Message{
		Type:      "wait_update",
		FetchedAt: snap.FetchedAt,
		Stale:     snap.Stale,
		Entries:   snap.Entries,
	}
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop message to avoid blocking
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
