package http

import (
	"context"
	"sync"

	"github.com/fredcamaral/patterndeck/internal/domain/ports"
)

// Connection represents a WebSocket connection
type Connection struct {
	ID   string
	Send chan ports.UpdateEvent
}

type directEvent struct {
	id    string
	event ports.UpdateEvent
}

// ConnectionManager manages WebSocket connections
type ConnectionManager struct {
	connections map[string]*Connection
	broadcast   chan ports.UpdateEvent
	direct      chan directEvent
	register    chan *Connection
	unregister  chan string
	mu          sync.RWMutex
	done        chan struct{}
	doneOnce    sync.Once
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*Connection),
		broadcast:   make(chan ports.UpdateEvent, 256),
		direct:      make(chan directEvent, 64),
		register:    make(chan *Connection),
		unregister:  make(chan string),
		done:        make(chan struct{}),
	}
}

// Run starts the connection manager main loop
func (cm *ConnectionManager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			cm.doneOnce.Do(func() { close(cm.done) })
			cm.CloseAll()
			return

		case conn := <-cm.register:
			cm.mu.Lock()
			cm.connections[conn.ID] = conn
			cm.mu.Unlock()

		case id := <-cm.unregister:
			cm.remove(id)

		case d := <-cm.direct:
			cm.mu.Lock()
			if conn, ok := cm.connections[d.id]; ok {
				select {
				case conn.Send <- d.event:
				default:
					// dropped, the client is already behind
				}
			}
			cm.mu.Unlock()

		case event := <-cm.broadcast:
			cm.mu.Lock()
			for id, conn := range cm.connections {
				// a navigation event is not echoed to the client that sent it
				if event.Source != "" && event.Source == id {
					continue
				}
				select {
				case conn.Send <- event:
				default:
					// Client too slow, close connection
					close(conn.Send)
					delete(cm.connections, id)
				}
			}
			cm.mu.Unlock()
		}
	}
}

// RegisterConnection adds a new connection. It reports false once the manager has stopped.
func (cm *ConnectionManager) RegisterConnection(conn *Connection) bool {
	select {
	case cm.register <- conn:
		return true
	case <-cm.done:
		return false
	}
}

// Unregister removes a connection
func (cm *ConnectionManager) Unregister(connID string) {
	select {
	case cm.unregister <- connID:
	case <-cm.done:
		// Manager is shutting down, CloseAll takes care of it
	}
}

// Broadcast sends an event to all connections except its source
func (cm *ConnectionManager) Broadcast(event ports.UpdateEvent) {
	select {
	case cm.broadcast <- event:
	case <-cm.done:
		// Manager is shutting down
	}
}

// SendTo sends an event to a single connection
func (cm *ConnectionManager) SendTo(connID string, event ports.UpdateEvent) {
	select {
	case cm.direct <- directEvent{id: connID, event: event}:
	case <-cm.done:
	}
}

// Count returns the number of registered connections
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

func (cm *ConnectionManager) remove(id string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if conn, ok := cm.connections[id]; ok {
		delete(cm.connections, id)
		close(conn.Send)
	}
}
