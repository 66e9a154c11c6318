package fakes

import (
	"errors"
	"sync"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/domain/ports"
)

// ErrSurfaceGone is returned by Post once the surface was marked broken
var ErrSurfaceGone = errors.New("surface gone")

// Surface records everything posted to it
type Surface struct {
	id     string
	origin string

	mu                 sync.Mutex
	ready              bool
	broken             bool
	messages           []entities.CommandMessage
	fullscreenRequests []bool
	fullscreenErr      error
}

// NewSurface creates a ready surface hosting an embed from origin
func NewSurface(id, origin string) *Surface {
	return &Surface{id: id, origin: origin, ready: true}
}

// ID identifies the surface
func (s *Surface) ID() string {
	return s.id
}

// EmbedOrigin returns the origin the surface was created with
func (s *Surface) EmbedOrigin() string {
	return s.origin
}

// Ready reports the ready flag
func (s *Surface) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// SetReady toggles the ready flag
func (s *Surface) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Break makes every later Post fail
func (s *Surface) Break() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken = true
}

// Post records msg
func (s *Surface) Post(msg entities.CommandMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken {
		return ErrSurfaceGone
	}
	s.messages = append(s.messages, msg)
	return nil
}

// Messages returns the posted messages
func (s *Surface) Messages() []entities.CommandMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.CommandMessage(nil), s.messages...)
}

// Commands returns the posted commands in func,arg form
func (s *Surface) Commands() []string {
	msgs := s.Messages()
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Command().String())
	}
	return out
}

// Reset forgets recorded messages and fullscreen requests
func (s *Surface) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.fullscreenRequests = nil
}

// FailFullscreen makes RequestFullscreen return err
func (s *Surface) FailFullscreen(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fullscreenErr = err
}

// RequestFullscreen records the request
func (s *Surface) RequestFullscreen(enter bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fullscreenErr != nil {
		return s.fullscreenErr
	}
	s.fullscreenRequests = append(s.fullscreenRequests, enter)
	return nil
}

// FullscreenRequests returns the recorded requests
func (s *Surface) FullscreenRequests() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.fullscreenRequests...)
}

var (
	_ ports.EmbeddedSurface    = (*Surface)(nil)
	_ ports.FullscreenPlatform = (*Surface)(nil)
)
