package ports

import (
	"context"
	"time"
)

// HTTPServer defines the interface for the HTTP server
type HTTPServer interface {
	Start(ctx context.Context, port int, host string) error
	Stop(ctx context.Context) error
	IsRunning() bool
}

// UpdateEvent represents an event sent to WebSocket clients
type UpdateEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Outbound surface event types
const (
	EventTypeConnected         = "connected"
	EventTypeCommand           = "command"
	EventTypeFullscreenRequest = "fullscreen_request"
	EventTypePlayerState       = "player_state"
	EventTypeError             = "error"
)

// Inbound surface message types
const (
	MessageTypeReady            = "ready"
	MessageTypeGesture          = "gesture"
	MessageTypeFullscreenChange = "fullscreen_change"
	MessageTypeFullscreenError  = "fullscreen_error"
)

// BrowserLauncher opens a page of the running server for the user
type BrowserLauncher interface {
	Open(url string) error
}
