package http

import (
	"sync"

	"github.com/fredcamaral/vidwatch/internal/domain/ports"
)

// Connection represents a surface WebSocket connection bound to one player session
type Connection struct {
	ID        string
	SessionID string
	Send      chan ports.UpdateEvent
}

// ConnectionManager tracks surface connections. It owns each connection's
// Send channel and is the only place that closes it.
type ConnectionManager struct {
	connections map[string]*Connection
	mu          sync.RWMutex
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*Connection),
	}
}

// Register adds a connection
func (cm *ConnectionManager) Register(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[conn.ID] = conn
}

// Unregister removes a connection and closes its Send channel
func (cm *ConnectionManager) Unregister(connID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if conn, ok := cm.connections[connID]; ok {
		delete(cm.connections, connID)
		close(conn.Send)
	}
}

// Send queues event for one connection without blocking. It reports false
// when the connection is gone or its buffer is full.
func (cm *ConnectionManager) Send(connID string, event ports.UpdateEvent) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	conn, ok := cm.connections[connID]
	if !ok {
		return false
	}

	select {
	case conn.Send <- event:
		return true
	default:
		// Client too slow, drop the event
		return false
	}
}

// BroadcastSession queues event for every connection of a session and
// returns how many accepted it
func (cm *ConnectionManager) BroadcastSession(sessionID string, event ports.UpdateEvent) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	sent := 0
	for _, conn := range cm.connections {
		if conn.SessionID != sessionID {
			continue
		}
		select {
		case conn.Send <- event:
			sent++
		default:
		}
	}
	return sent
}

// CloseSession closes every connection of a session
func (cm *ConnectionManager) CloseSession(sessionID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for id, conn := range cm.connections {
		if conn.SessionID == sessionID {
			close(conn.Send)
			delete(cm.connections, id)
		}
	}
}

// Count returns the number of open connections
func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// CloseAll closes all connections
func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for id, conn := range cm.connections {
		close(conn.Send)
		delete(cm.connections, id)
	}
}
