package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/domain/ports"
	"github.com/fredcamaral/vidwatch/internal/domain/services"
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

	// Outbound events buffered per surface before new ones are dropped
	sendBuffer = 64
)

var errSurfaceGone = errors.New("surface connection closed")

// createUpgrader creates a WebSocket upgrader with proper origin validation
func (s *Server) createUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.isValidOrigin(r)
		},
	}
}

// ClientMessage represents a message received from the watch page
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// SurfaceClient is a watch page connected over WebSocket. It is the
// embedded surface of one player session: commands are relayed to the page,
// which posts them into the embed at the session's target origin.
type SurfaceClient struct {
	id          string
	embedOrigin string
	ready       atomic.Bool
	conn        *websocket.Conn
	send        chan ports.UpdateEvent
	manager     *ConnectionManager
	session     *services.Session
	logger      ports.Logger
}

// ID identifies the connection
func (c *SurfaceClient) ID() string {
	return c.id
}

// EmbedOrigin is the origin of the embed the page hosts
func (c *SurfaceClient) EmbedOrigin() string {
	return c.embedOrigin
}

// Ready reports whether the page has signalled that the embed loaded
func (c *SurfaceClient) Ready() bool {
	return c.ready.Load()
}

// Post queues a command for the page without waiting for delivery
func (c *SurfaceClient) Post(msg entities.CommandMessage) error {
	if !c.manager.Send(c.id, newEvent(ports.EventTypeCommand, msg)) {
		return errSurfaceGone
	}
	return nil
}

// RequestFullscreen asks the page to change fullscreen. The outcome comes
// back as a fullscreen_change or fullscreen_error message.
func (c *SurfaceClient) RequestFullscreen(enter bool) error {
	if !c.manager.Send(c.id, newEvent(ports.EventTypeFullscreenRequest, map[string]bool{"enter": enter})) {
		return errSurfaceGone
	}
	return nil
}

func newEvent(eventType string, data interface{}) ports.UpdateEvent {
	return ports.UpdateEvent{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// handleSurfaceWebSocket attaches a watch page to a player session
func (s *Server) handleSurfaceWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		s.handleError(w, err, http.StatusNotFound)
		return
	}

	embedOrigin := r.URL.Query().Get("embed_origin")
	if embedOrigin == "" {
		embedOrigin = s.config.Player.GetEmbedOrigin()
	}
	if entities.NormalizeOrigin(embedOrigin) != session.Channel.TargetOrigin() {
		s.handleError(w, services.ErrOriginMismatch, http.StatusForbidden)
		return
	}

	upgrader := s.createUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed: %v", err)
		return
	}

	client := &SurfaceClient{
		id:          uuid.New().String(),
		embedOrigin: embedOrigin,
		conn:        conn,
		send:        make(chan ports.UpdateEvent, sendBuffer),
		manager:     s.connMgr,
		session:     session,
		logger:      s.logger,
	}

	s.connMgr.Register(&Connection{
		ID:        client.id,
		SessionID: session.ID,
		Send:      client.send,
	})

	go client.writePump()

	if _, err := s.sessions.Attach(session.ID, client); err != nil {
		s.logger.Warn("Surface %s could not attach to session %s: %v", client.id, session.ID, err)
		s.connMgr.Send(client.id, newEvent(ports.EventTypeError, map[string]string{"message": err.Error()}))
		s.connMgr.Unregister(client.id)
		return
	}

	cancel, err := s.sessions.Subscribe(session.ID, func(state entities.PlayerState) {
		s.connMgr.Send(client.id, newEvent(ports.EventTypePlayerState, state))
	})
	if err != nil {
		cancel = func() {}
	}

	state, _ := session.Overlay.Snapshot()
	s.connMgr.Send(client.id, newEvent(ports.EventTypeConnected, map[string]interface{}{
		"connection_id": client.id,
		"session_id":    session.ID,
		"target_origin": session.Channel.TargetOrigin(),
		"state":         state,
	}))

	s.logger.Debug("Surface %s attached to session %s", client.id, session.ID)

	go func() {
		client.readPump()
		cancel()
		s.sessions.Detach(session.ID, client)
		s.connMgr.Unregister(client.id)
		s.logger.Debug("Surface %s detached from session %s", client.id, session.ID)
	}()
}

// readPump pumps messages from the WebSocket connection
func (c *SurfaceClient) readPump() {
	defer func() { _ = c.conn.Close() }()

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
				c.logger.Error("WebSocket connection error: %v", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Warn("Failed to parse surface message: %v", err)
			continue
		}

		if err := c.handleMessage(msg); err != nil {
			c.logger.Debug("Surface %s message %s rejected: %v", c.id, msg.Type, err)
			c.manager.Send(c.id, newEvent(ports.EventTypeError, map[string]string{
				"type":    msg.Type,
				"message": err.Error(),
			}))
		}
	}
}

// handleMessage applies one inbound message to the session's overlay
func (c *SurfaceClient) handleMessage(msg ClientMessage) error {
	overlay := c.session.Overlay

	switch msg.Type {
	case ports.MessageTypeReady:
		c.ready.Store(true)
		return nil

	case ports.MessageTypeGesture:
		var g entities.Gesture
		if err := json.Unmarshal(msg.Data, &g); err != nil {
			return err
		}
		_, err := overlay.Dispatch(g)
		return err

	case ports.MessageTypeFullscreenChange:
		var data struct {
			Fullscreen bool `json:"fullscreen"`
		}
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				return err
			}
		}
		_, err := overlay.HandlePlatformEvent(entities.PlatformEvent{
			Type:       entities.PlatformFullscreenChange,
			Fullscreen: data.Fullscreen,
		})
		return err

	case ports.MessageTypeFullscreenError:
		_, err := overlay.HandlePlatformEvent(entities.PlatformEvent{Type: entities.PlatformFullscreenError})
		return err

	default:
		return errors.New("unknown message type: " + msg.Type)
	}
}

// writePump pumps messages to the WebSocket connection
func (c *SurfaceClient) writePump() {
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
				// The manager closed the channel
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

// isValidOrigin validates WebSocket connection origins based on environment
func (s *Server) isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Allow empty origin (same-origin requests)
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		s.logger.Warn("WebSocket connection rejected: invalid origin URL %q: %v", origin, err)
		return false
	}

	// Development mode: allow localhost and LAN addresses
	if s.config.Server.IsDevelopment() {
		return isDevelopmentOrigin(originURL)
	}

	// Production mode: strict whitelist validation
	return s.isProductionOrigin(originURL)
}

// isDevelopmentOrigin validates origins for development environment
func isDevelopmentOrigin(originURL *url.URL) bool {
	hostname := originURL.Hostname()

	switch hostname {
	case "localhost", "127.0.0.1", "0.0.0.0", "::1":
		return true
	}

	// Allow private network ranges (192.168.x.x, 10.x.x.x, 172.16-31.x.x)
	return strings.HasPrefix(hostname, "192.168.") ||
		strings.HasPrefix(hostname, "10.") ||
		isPrivateClassB(hostname)
}

// isProductionOrigin validates origins against the configured CORS origins
func (s *Server) isProductionOrigin(originURL *url.URL) bool {
	for _, allowedOrigin := range s.config.Server.GetCORSOrigins() {
		if entities.NormalizeOrigin(originURL.String()) == entities.NormalizeOrigin(allowedOrigin) {
			return true
		}

		// Support wildcard subdomains (*.example.com)
		if strings.HasPrefix(allowedOrigin, "*.") {
			domain := strings.TrimPrefix(allowedOrigin, "*")
			if strings.HasSuffix(originURL.Hostname(), domain) {
				return true
			}
		}
	}

	s.logger.Warn("WebSocket connection rejected: origin %s not in whitelist", originURL.String())
	return false
}

// isPrivateClassB checks for 172.16.0.0 to 172.31.255.255 range
func isPrivateClassB(hostname string) bool {
	if !strings.HasPrefix(hostname, "172.") {
		return false
	}

	parts := strings.Split(hostname, ".")
	if len(parts) < 2 {
		return false
	}

	switch parts[1] {
	case "16", "17", "18", "19", "20", "21", "22", "23", "24", "25", "26", "27", "28", "29", "30", "31":
		return true
	default:
		return false
	}
}

var (
	_ ports.EmbeddedSurface    = (*SurfaceClient)(nil)
	_ ports.FullscreenPlatform = (*SurfaceClient)(nil)
)
