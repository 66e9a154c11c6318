package ports

import (
	"github.com/fredcamaral/vidwatch/internal/domain/entities"
)

// EmbeddedSurface is the page-side endpoint that relays commands into the
// embedded player. It never reports playback state back.
type EmbeddedSurface interface {
	// ID identifies the surface connection
	ID() string

	// EmbedOrigin is the origin of the embed the surface hosts
	EmbedOrigin() string

	// Ready reports whether the embed has loaded and can take commands
	Ready() bool

	// Post hands a message to the surface without waiting for any reply
	Post(msg entities.CommandMessage) error
}

// FullscreenPlatform requests fullscreen changes on the player's containing
// region. The outcome arrives later as a PlatformEvent.
type FullscreenPlatform interface {
	RequestFullscreen(enter bool) error
}

// CommandSender is the outbound side of the command channel
type CommandSender interface {
	// Send posts action to the embed; it reports whether the command left
	Send(action string, args ...float64) bool

	// Close detaches the surface; nothing is sent afterwards
	Close()
}

// StateObserver receives a snapshot after every overlay state change.
// It runs on the overlay's loop and must not block.
type StateObserver func(state entities.PlayerState)

// SurfaceLink is what an overlay needs from its command channel: outbound
// commands plus fullscreen requests on the page hosting the embed
type SurfaceLink interface {
	CommandSender
	FullscreenPlatform
}
