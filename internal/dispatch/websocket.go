package dispatch

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"ranch-alerting-service/internal/logging"
	"ranch-alerting-service/internal/models"
)

// maxConnections caps concurrent live-UI sockets.
const maxConnections = 50

// Hub fans accepted notifications out to connected UI clients.
type Hub struct {
	mu          sync.Mutex
	connections map[*websocket.Conn]bool
	logger      *logging.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		connections: make(map[*websocket.Conn]bool),
		logger:      logger,
	}
}

// Add registers a connection.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.connections) >= maxConnections {
		h.logger.Warnf("Max websocket connections reached, rejecting client")
		conn.Close()
		return
	}
	h.connections[conn] = true
	h.logger.Infof("Added websocket connection (total: %d)", len(h.connections))
}

// Remove unregisters a connection.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[conn]; ok {
		delete(h.connections, conn)
		h.logger.Infof("Removed websocket connection (remaining: %d)", len(h.connections))
	}
}

// Broadcast sends a notification to every connected client, dropping
// connections that fail to write.
func (h *Hub) Broadcast(n models.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		h.logger.Errorf("Failed to marshal notification %s for broadcast: %v", n.ID, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.connections {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Errorf("Failed to push notification over websocket: %v", err)
			conn.Close()
			delete(h.connections, conn)
		}
	}
}
