package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/domain/ports"
)

var (
	// ErrSessionNotFound is returned for an unknown or unmounted session id
	ErrSessionNotFound = errors.New("player session not found")

	// ErrMissingVideoID is returned when mounting without a video
	ErrMissingVideoID = errors.New("video id is required")
)

// Session is one mounted overlay and the channel that carries its commands
type Session struct {
	ID        string
	VideoID   string
	CreatedAt time.Time
	Overlay   *Overlay
	Channel   *CommandChannel

	// guarded by SessionManager.mu
	surfaces map[string]struct{}
	reaper   *reaper
}

// reaper unmounts a session that has had no surface for the orphan timeout
type reaper struct {
	timer  ports.Timer
	cancel chan struct{}
}

// SessionManager mounts one overlay per watch page. A session with no
// attached surface is unmounted after the orphan timeout, so pages that go
// away without deleting their session do not leave overlays running.
type SessionManager struct {
	cfg    entities.PlayerConfig
	clock  ports.TimeProvider
	logger ports.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	obsMu     sync.RWMutex
	observers map[string]map[string]ports.StateObserver
}

// NewSessionManager creates a manager; a nil clock means wall time
func NewSessionManager(cfg entities.PlayerConfig, clock ports.TimeProvider, logger ports.Logger) *SessionManager {
	if clock == nil {
		clock = ports.NewSystemClock()
	}
	return &SessionManager{
		cfg:       cfg,
		clock:     clock,
		logger:    orDiscard(logger),
		sessions:  make(map[string]*Session),
		observers: make(map[string]map[string]ports.StateObserver),
	}
}

// Mount creates and mounts an overlay for videoID. A non-positive duration
// falls back to the configured default.
func (m *SessionManager) Mount(videoID string, durationSeconds float64) (*Session, error) {
	if videoID == "" {
		return nil, ErrMissingVideoID
	}
	if durationSeconds <= 0 {
		durationSeconds = float64(m.cfg.GetDefaultDuration())
	}

	channel, err := NewCommandChannel(m.cfg.GetEmbedOrigin(), m.logger)
	if err != nil {
		return nil, fmt.Errorf("creating command channel: %w", err)
	}

	id := uuid.NewString()
	overlay := NewOverlay(OverlayOptions{
		SessionID:       id,
		VideoID:         videoID,
		DurationSeconds: durationSeconds,
		Config:          m.cfg,
		Clock:           m.clock,
		Logger:          m.logger,
		Observer:        func(s entities.PlayerState) { m.notify(id, s) },
	}, channel)

	session := &Session{
		ID:        id,
		VideoID:   videoID,
		CreatedAt: m.clock.Now(),
		Overlay:   overlay,
		Channel:   channel,
		surfaces:  make(map[string]struct{}),
	}

	m.mu.Lock()
	m.sessions[id] = session
	m.armReaper(session)
	m.mu.Unlock()

	overlay.Mount()
	m.logger.Info("Mounted player session %s for video %s (%.0fs)", id, videoID, durationSeconds)
	return session, nil
}

// Get returns a mounted session
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Attach connects a surface to a session's command channel
func (m *SessionManager) Attach(id string, surface ports.EmbeddedSurface) (*Session, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.Channel.Attach(surface); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if _, ok := m.sessions[id]; !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.surfaces[surface.ID()] = struct{}{}
	m.stopReaper(s)
	m.mu.Unlock()

	m.logger.Debug("Surface %s attached to session %s", surface.ID(), id)
	return s, nil
}

// Detach disconnects a surface; later commands for the session are dropped.
// When the last surface goes the orphan countdown starts.
func (m *SessionManager) Detach(id string, surface ports.EmbeddedSurface) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	if _, attached := s.surfaces[surface.ID()]; attached {
		delete(s.surfaces, surface.ID())
		if len(s.surfaces) == 0 {
			m.armReaper(s)
		}
	}
	m.mu.Unlock()

	s.Channel.Detach(surface)
	m.logger.Debug("Surface %s detached from session %s", surface.ID(), id)
}

// Subscribe registers fn for state changes of a session. The returned
// function removes the subscription.
func (m *SessionManager) Subscribe(id string, fn ports.StateObserver) (func(), error) {
	if _, err := m.Get(id); err != nil {
		return nil, err
	}

	key := uuid.NewString()
	m.obsMu.Lock()
	if m.observers[id] == nil {
		m.observers[id] = make(map[string]ports.StateObserver)
	}
	m.observers[id][key] = fn
	m.obsMu.Unlock()

	return func() {
		m.obsMu.Lock()
		defer m.obsMu.Unlock()
		delete(m.observers[id], key)
		if len(m.observers[id]) == 0 {
			delete(m.observers, id)
		}
	}, nil
}

// Unmount tears down a session and releases its timers
func (m *SessionManager) Unmount(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		m.stopReaper(s)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	m.teardown(s)
	m.logger.Info("Unmounted player session %s", id)
	return nil
}

func (m *SessionManager) teardown(s *Session) {
	s.Overlay.Unmount()

	m.obsMu.Lock()
	delete(m.observers, s.ID)
	m.obsMu.Unlock()
}

// armReaper restarts the orphan countdown; m.mu must be held
func (m *SessionManager) armReaper(s *Session) {
	m.stopReaper(s)

	r := &reaper{
		timer:  m.clock.NewTimer(m.cfg.GetOrphanTimeout()),
		cancel: make(chan struct{}),
	}
	s.reaper = r

	go func() {
		select {
		case <-r.timer.C():
			m.reap(s.ID, r)
		case <-r.cancel:
		}
	}()
}

// stopReaper cancels a pending orphan countdown; m.mu must be held
func (m *SessionManager) stopReaper(s *Session) {
	if s.reaper == nil {
		return
	}
	s.reaper.timer.Stop()
	close(s.reaper.cancel)
	s.reaper = nil
}

// reap unmounts the session unless r was cancelled after it fired
func (m *SessionManager) reap(id string, r *reaper) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok || s.reaper != r {
		m.mu.Unlock()
		return
	}
	s.reaper = nil
	delete(m.sessions, id)
	m.mu.Unlock()

	m.teardown(s)
	m.logger.Info("Unmounted orphaned player session %s after %s without a surface", id, m.cfg.GetOrphanTimeout())
}

// UnmountAll tears down every session
func (m *SessionManager) UnmountAll() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		_ = m.Unmount(id)
	}
}

// Count returns the number of mounted sessions
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *SessionManager) notify(id string, state entities.PlayerState) {
	m.obsMu.RLock()
	defer m.obsMu.RUnlock()
	for _, fn := range m.observers[id] {
		fn(state)
	}
}
