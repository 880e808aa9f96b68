package ports

import (
	"context"
	"net/http"
	"time"
)

// HTTPServer defines the interface for the HTTP host
type HTTPServer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Handler() http.Handler
	IsRunning() bool
}

// UpdateEvent represents an event sent to WebSocket clients
type UpdateEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source,omitempty"`
	Data      interface{} `json:"data"`
}

// UpdateEventType constants
const (
	EventTypeConnected  = "connected"
	EventTypeNavigation = "navigate"
	EventTypeError      = "error"
)
