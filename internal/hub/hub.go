// Package hub manages WebSocket connections for the in-app notification
// channel.
package hub

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"merchant-backoffice/internal/logging"
	"merchant-backoffice/internal/models"
)

const maxConnectionsPerRecipient = 10

// Hub tracks the open WebSocket connections per recipient.
type Hub struct {
	connections map[string]map[*websocket.Conn]bool
	mutex       sync.Mutex
	logger      *logging.Logger
}

func New(logger *logging.Logger) *Hub {
	return &Hub{
		connections: make(map[string]map[*websocket.Conn]bool),
		logger:      logger,
	}
}

// AddConnection registers a connection for a recipient.
func (h *Hub) AddConnection(recipient string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, exists := h.connections[recipient]; !exists {
		h.connections[recipient] = make(map[*websocket.Conn]bool)
	}
	if len(h.connections[recipient]) >= maxConnectionsPerRecipient {
		h.logger.Warnf("Max connections reached for %s", recipient)
		return
	}
	h.connections[recipient][conn] = true
	h.logger.Infof("Added WebSocket connection for %s (total: %d)", recipient, len(h.connections[recipient]))
}

// RemoveConnection drops a connection for a recipient.
func (h *Hub) RemoveConnection(recipient string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if conns, exists := h.connections[recipient]; exists {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.connections, recipient)
		}
		h.logger.Infof("Removed WebSocket connection for %s (remaining: %d)", recipient, len(conns))
	}
}

// Push delivers an in-app notification to every open connection of the
// recipient. Connections that fail to write are dropped. Returns an error
// only when the recipient has no open connections at all.
func (h *Hub) Push(msg models.Message) error {
	payload, err := json.Marshal(map[string]string{
		"title":   msg.Title,
		"message": msg.Body,
		"trigger": msg.TriggerKey,
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	conns, exists := h.connections[msg.Recipient]
	if !exists || len(conns) == 0 {
		return fmt.Errorf("no open connections for %s", msg.Recipient)
	}
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Errorf("Failed to push notification to %s: %v", msg.Recipient, err)
			delete(conns, conn)
		}
	}
	if len(conns) == 0 {
		delete(h.connections, msg.Recipient)
		return fmt.Errorf("all connections for %s closed during push", msg.Recipient)
	}
	return nil
}
