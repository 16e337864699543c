// Package live pushes server events to connected browsers over websockets.
package live

import (
	"encoding/json"
	"sync"
	"time"

	"equiprent-backend/internal/logger"
)

// Event is the envelope every pushed message travels in.
type Event struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub tracks connected clients per user and fans events out to them.
type Hub struct {
	clients     map[*Client]bool
	userClients map[int32][]*Client
	register    chan *Client
	unregister  chan *Client
	mu          sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		userClients: make(map[int32][]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
	}
}

// Run processes client registration. Call it once in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.userClients[client.userID] = append(h.userClients[client.userID], client)
			h.mu.Unlock()
			logger.Debug("live client connected", "userId", client.userID)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				clients := h.userClients[client.userID]
				for i, c := range clients {
					if c == client {
						h.userClients[client.userID] = append(clients[:i], clients[i+1:]...)
						break
					}
				}
				if len(h.userClients[client.userID]) == 0 {
					delete(h.userClients, client.userID)
				}
			}
			h.mu.Unlock()
			logger.Debug("live client disconnected", "userId", client.userID)
		}
	}
}

// Push sends an event to every open connection of one user. Users with
// no connection simply miss the push; the notification row is the
// durable copy.
func (h *Hub) Push(userID int32, eventType string, payload any) {
	message, err := json.Marshal(Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		logger.Error("encode live event", "error", err, "type", eventType)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.userClients[userID] {
		select {
		case client.send <- message:
		default:
			// Slow consumer: drop the event rather than block the hub.
		}
	}
}
