// Package ws serves the live vehicle stream over WebSocket. Clients get the
// current displayable set on connect and a fresh copy after every
// reconciliation cycle.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"tracker.ridelink.org/internal/logging"
	"tracker.ridelink.org/internal/metrics"
	"tracker.ridelink.org/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub tracks connected clients and fans out vehicle broadcasts. It retains
// the last broadcast so newly connected clients see state immediately.
type Hub struct {
	mu           sync.Mutex
	clients      map[*websocket.Conn]struct{}
	lastSnapshot []models.Vehicle
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// NewHub creates a hub. metrics may be nil.
func NewHub(logger *slog.Logger, m *metrics.Metrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger.With(slog.String("component", "ws_hub")),
		metrics: m,
	}
}

// ServeHTTP upgrades the connection, registers the client, and sends the
// most recent vehicle set so the map renders without waiting for the next
// cycle.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.LogError(h.logger, "websocket upgrade failed", err)
		return
	}

	// Register and send the retained snapshot under one lock. Broadcast
	// writes under the same lock, so the two can never interleave writes on
	// a single connection (gorilla allows one concurrent writer per conn).
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	err = writeVehicles(conn, h.lastSnapshot)
	if err != nil {
		delete(h.clients, conn)
	}
	h.updateGauge()
	h.mu.Unlock()

	if err != nil {
		_ = conn.Close()
		return
	}
	go h.readPump(conn)
}

// Broadcast sends the vehicle set to every connected client and retains it
// for future connects. Clients that fail to write are dropped.
func (h *Hub) Broadcast(vehicles []models.Vehicle) {
	data, err := json.Marshal(vehicles)
	if err != nil {
		logging.LogError(h.logger, "failed to marshal vehicle broadcast", err)
		return
	}

	h.mu.Lock()
	h.lastSnapshot = vehicles
	for c := range h.clients {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			_ = c.Close()
			delete(h.clients, c)
		}
	}
	h.updateGauge()
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.Close()
		delete(h.clients, c)
	}
	h.updateGauge()
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.updateGauge()
	h.mu.Unlock()
}

// readPump drains client messages so pings and closes are processed; the
// stream is one-way otherwise.
func (h *Hub) readPump(c *websocket.Conn) {
	defer func() {
		h.remove(c)
		_ = c.Close()
	}()
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

// updateGauge must be called with the mutex held.
func (h *Hub) updateGauge() {
	if h.metrics != nil {
		h.metrics.WSClientsConnected.Set(float64(len(h.clients)))
	}
}

func writeVehicles(c *websocket.Conn, vehicles []models.Vehicle) error {
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	data, err := json.Marshal(vehicles)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, data)
}
