// Package websocket pushes availability transitions to connected dashboard
// clients, so vehicle cards flip between available/booked without polling.
// The stream is read-only: clients receive events and send nothing but
// control frames.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AvailabilityEvent is broadcast whenever a booking mutation recomputes a
// vehicle's availability flag.
type AvailabilityEvent struct {
	Type        string    `json:"type"`
	VehicleID   int64     `json:"vehicle_id"`
	IsAvailable bool      `json:"is_available"`
	OccurredAt  time.Time `json:"occurred_at"`
}

const eventTypeAvailability = "vehicle.availability"

type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		logger:     logger,
	}
}

// Run owns the client set. It must be started once, before the HTTP server
// begins accepting connections.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("websocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it rather than block the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// BroadcastAvailability fans an availability transition out to every
// connected client. Called after the owning transaction has committed.
func (h *Hub) BroadcastAvailability(vehicleID int64, isAvailable bool) {
	event := AvailabilityEvent{
		Type:        eventTypeAvailability,
		VehicleID:   vehicleID,
		IsAvailable: isAvailable,
		OccurredAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode availability event", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("availability broadcast queue full, dropping event",
			zap.Int64("vehicle_id", vehicleID))
	}
}

// Register hands a new connection to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}
