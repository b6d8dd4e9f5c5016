package websocket

import (
	"context"
	"sync"

	"ai-scorestudio/internal/events"
	"ai-scorestudio/internal/pkg/logger"
)

// Hub fans composition events out to connected UI clients. A desktop install
// usually has exactly one client, but nothing prevents a second window.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Source of composition events
	bus *events.Bus

	logger logger.ILogger
}

func NewHub(bus *events.Bus, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		bus:        bus,
		logger:     log,
	}
}

// Run owns the client set and pushes every bus event to all clients.
// Blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	messages, err := h.bus.Subscribe(ctx)
	if err != nil {
		h.logger.Error("Hub", "Failed to subscribe to composer events", map[string]interface{}{"error": err.Error()})
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", nil)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", nil)

		case msg, ok := <-messages:
			if !ok {
				return
			}
			h.broadcast(msg.Payload)
			msg.Ack()
		}
	}
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			// Slow consumer; drop it rather than stall the event loop.
			h.logger.Warn("Hub", "Client send buffer full, dropping client", nil)
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}
