package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/domain/ports"
)

var (
	// ErrOriginMismatch is returned when a surface hosts an embed from another origin
	ErrOriginMismatch = errors.New("surface embed origin does not match channel target origin")

	// ErrChannelClosed is returned when attaching to a closed channel
	ErrChannelClosed = errors.New("command channel closed")

	// ErrFullscreenUnavailable is returned when no attached surface can go fullscreen
	ErrFullscreenUnavailable = errors.New("fullscreen unavailable")
)

// CommandChannel delivers fire-and-forget commands to one embedded surface.
// Messages are always addressed to the target origin fixed at creation.
type CommandChannel struct {
	targetOrigin string
	logger       ports.Logger

	mu      sync.Mutex
	surface ports.EmbeddedSurface
	closed  bool
}

// NewCommandChannel creates a channel scoped to targetOrigin
func NewCommandChannel(targetOrigin string, logger ports.Logger) (*CommandChannel, error) {
	origin := entities.NormalizeOrigin(targetOrigin)
	if origin == "" || origin == "*" {
		return nil, fmt.Errorf("invalid target origin %q", targetOrigin)
	}
	return &CommandChannel{
		targetOrigin: origin,
		logger:       orDiscard(logger),
	}, nil
}

// TargetOrigin returns the only origin commands are addressed to
func (c *CommandChannel) TargetOrigin() string {
	return c.targetOrigin
}

// Attach connects a surface, replacing any previous one
func (c *CommandChannel) Attach(surface ports.EmbeddedSurface) error {
	if entities.NormalizeOrigin(surface.EmbedOrigin()) != c.targetOrigin {
		return fmt.Errorf("%w: got %q, want %q", ErrOriginMismatch, surface.EmbedOrigin(), c.targetOrigin)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrChannelClosed
	}
	c.surface = surface
	return nil
}

// Detach disconnects surface if it is the one attached
func (c *CommandChannel) Detach(surface ports.EmbeddedSurface) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.surface != nil && c.surface.ID() == surface.ID() {
		c.surface = nil
	}
}

// Attached reports whether a surface is connected
func (c *CommandChannel) Attached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface != nil
}

// Send posts a command to the surface. Commands for a missing, unready or
// closed surface are dropped.
func (c *CommandChannel) Send(action string, args ...float64) bool {
	c.mu.Lock()
	surface := c.surface
	closed := c.closed
	c.mu.Unlock()

	cmd := entities.NewCommand(action, args...)
	if closed || surface == nil || !surface.Ready() {
		c.logger.Debug("Dropping command %s: surface not ready", cmd)
		return false
	}

	if err := surface.Post(entities.NewCommandMessage(cmd, c.targetOrigin)); err != nil {
		c.logger.Debug("Dropping command %s: %v", cmd, err)
		return false
	}
	return true
}

// RequestFullscreen asks the attached surface's page to enter or leave fullscreen
func (c *CommandChannel) RequestFullscreen(enter bool) error {
	c.mu.Lock()
	surface := c.surface
	closed := c.closed
	c.mu.Unlock()

	if closed || surface == nil {
		return ErrFullscreenUnavailable
	}
	platform, ok := surface.(ports.FullscreenPlatform)
	if !ok {
		return ErrFullscreenUnavailable
	}
	return platform.RequestFullscreen(enter)
}

// Close detaches the surface for good
func (c *CommandChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.surface = nil
}

var (
	_ ports.CommandSender      = (*CommandChannel)(nil)
	_ ports.FullscreenPlatform = (*CommandChannel)(nil)
)
