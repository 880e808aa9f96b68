package http

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fredcamaral/patterndeck/internal/domain/ports"
	"github.com/fredcamaral/patterndeck/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// navigationState is a widget position, horizontal and vertical slide index
type navigationState struct {
	IndexH int `json:"indexh"`
	IndexV int `json:"indexv"`
}

// ClientMessage represents a message received from the client
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// WebSocketClient represents a WebSocket client connection
type WebSocketClient struct {
	id     string
	conn   *websocket.Conn
	send   chan ports.UpdateEvent
	server *Server
	logger *logging.Logger
}

// createUpgrader creates a WebSocket upgrader with origin validation
func (s *Server) createUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.isValidOrigin,
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.createUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		s.logger.Warn("WebSocket upgrade failed: %v", err)
		return
	}

	client := &WebSocketClient{
		id:     uuid.New().String(),
		conn:   conn,
		send:   make(chan ports.UpdateEvent, 64),
		server: s,
	}
	client.logger = s.logger.With("websocket").WithField("client", client.id)

	// queued before registration so it is always the first message
	client.send <- ports.UpdateEvent{
		Type:      ports.EventTypeConnected,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"client_id": client.id,
			"version":   s.version,
			"position":  s.currentPosition(),
		},
	}

	if !s.connMgr.RegisterConnection(&Connection{ID: client.id, Send: client.send}) {
		_ = conn.Close()
		return
	}
	if s.metrics != nil {
		s.metrics.IncWebSocketClients()
	}
	client.logger.Debug("Client connected")

	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *WebSocketClient) readPump() {
	defer func() {
		c.server.connMgr.Unregister(c.id)
		_ = c.conn.Close()
		if c.server.metrics != nil {
			c.server.metrics.DecWebSocketClients()
		}
		c.logger.Debug("Client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket connection error: %v", err)
			}
			return
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages to the WebSocket connection
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The channel has been closed
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage validates a client message and relays navigation to the other clients
func (c *WebSocketClient) handleMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.reject("invalid message")
		return
	}

	if msg.Type != ports.EventTypeNavigation {
		c.reject("unsupported message type")
		return
	}

	var pos navigationState
	if err := json.Unmarshal(msg.Data, &pos); err != nil || pos.IndexH < 0 || pos.IndexV < 0 {
		c.reject("invalid navigation target")
		return
	}

	c.server.setPosition(pos)
	if c.server.metrics != nil {
		c.server.metrics.IncNavigation()
	}

	c.server.connMgr.Broadcast(ports.UpdateEvent{
		Type:      ports.EventTypeNavigation,
		Timestamp: time.Now(),
		Source:    c.id,
		Data:      pos,
	})
	c.logger.Debug("Navigation to %d/%d", pos.IndexH, pos.IndexV)
}

// reject sends an error event back to this client only
func (c *WebSocketClient) reject(reason string) {
	c.logger.Debug("Rejected client message: %s", reason)

	c.server.connMgr.SendTo(c.id, ports.UpdateEvent{
		Type:      ports.EventTypeError,
		Timestamp: time.Now(),
		Data:      map[string]string{"message": reason},
	})
}

func (s *Server) currentPosition() navigationState {
	s.positionMu.RLock()
	defer s.positionMu.RUnlock()
	return s.position
}

func (s *Server) setPosition(pos navigationState) {
	s.positionMu.Lock()
	defer s.positionMu.Unlock()
	s.position = pos
}

// isValidOrigin accepts same-host, loopback and configured CORS origins
func (s *Server) isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Allow empty origin (non-browser clients)
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		s.logger.Warn("WebSocket connection rejected: invalid origin URL %q", origin)
		return false
	}

	if originURL.Host == r.Host {
		return true
	}

	if isLoopbackHost(originURL.Hostname()) {
		return true
	}

	for _, allowed := range s.config.Server.GetCORSOrigins() {
		if allowed == "*" || allowed == originURL.Scheme+"://"+originURL.Host {
			return true
		}
	}

	s.logger.Warn("WebSocket connection rejected: origin %s not allowed", origin)
	return false
}

func isLoopbackHost(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
