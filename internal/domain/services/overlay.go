package services

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/domain/ports"
)

var (
	// ErrOverlayUnmounted is returned for any call after Unmount
	ErrOverlayUnmounted = errors.New("player overlay unmounted")

	// ErrOverlayNotMounted is returned for calls made before Mount
	ErrOverlayNotMounted = errors.New("player overlay not mounted")

	// ErrDurationFixed is returned when the duration was already known
	ErrDurationFixed = errors.New("duration already set for this session")
)

// OverlayOptions configures a Player Control Overlay
type OverlayOptions struct {
	SessionID       string
	VideoID         string
	DurationSeconds float64
	Config          entities.PlayerConfig
	Clock           ports.TimeProvider
	Logger          ports.Logger
	Observer        ports.StateObserver
}

type overlayRequest struct {
	apply func() error
	reply chan overlayReply
}

type overlayReply struct {
	state entities.PlayerState
	err   error
}

// Overlay is the Player Control Overlay. It owns playback, audio,
// visibility and fullscreen state for one mounted player and turns user
// gestures into commands for the embedded surface.
//
// All state is owned by a single loop goroutine. Gestures, clock ticks,
// idle expiry and platform notifications are applied one at a time.
type Overlay struct {
	id       string
	videoID  string
	cfg      entities.PlayerConfig
	link     ports.SurfaceLink
	logger   ports.Logger
	observer ports.StateObserver

	// owned by the loop
	playing      bool
	clock        *PlaybackClock
	audio        entities.AudioState
	lastVolume   int
	visibility   entities.VisibilityState
	fullscreen   entities.FullscreenState
	fsBeforeFlip bool
	ticker       *scopedTicker
	idle         *scopedTimer
	fsConfirm    *scopedTimer

	requests  chan overlayRequest
	stop      chan struct{}
	done      chan struct{}
	mountOnce sync.Once
	stopOnce  sync.Once
	running   atomic.Bool
	final     entities.PlayerState
}

// NewOverlay creates an overlay bound to link. Nothing runs until Mount;
// calls made before then return ErrOverlayNotMounted.
func NewOverlay(opts OverlayOptions, link ports.SurfaceLink) *Overlay {
	clock := opts.Clock
	if clock == nil {
		clock = ports.NewSystemClock()
	}

	volume := opts.Config.GetDefaultVolume()
	o := &Overlay{
		id:         opts.SessionID,
		videoID:    opts.VideoID,
		cfg:        opts.Config,
		link:       link,
		logger:     orDiscard(opts.Logger),
		observer:   opts.Observer,
		clock:      NewPlaybackClock(),
		audio:      entities.AudioState{VolumeLevel: volume},
		lastVolume: volume,
		ticker:     newScopedTicker(clock),
		idle:       newScopedTimer(clock),
		fsConfirm:  newScopedTimer(clock),
		requests:   make(chan overlayRequest),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	o.clock.SetDuration(opts.DurationSeconds)
	return o
}

// ID returns the session id
func (o *Overlay) ID() string {
	return o.id
}

// VideoID returns the video the overlay plays
func (o *Overlay) VideoID() string {
	return o.videoID
}

// Done is closed once the overlay has been unmounted and released its timers
func (o *Overlay) Done() <-chan struct{} {
	return o.done
}

// Mount starts the overlay loop. Controls start visible with the idle
// countdown armed.
func (o *Overlay) Mount() {
	o.mountOnce.Do(func() {
		o.running.Store(true)
		go o.run()
	})
}

// Unmount stops the loop, cancels the clock ticker and every countdown and
// closes the command channel. It is safe to call more than once.
func (o *Overlay) Unmount() {
	o.stopOnce.Do(func() {
		close(o.stop)
	})

	started := true
	o.mountOnce.Do(func() {
		started = false
		o.release()
		close(o.done)
	})
	if started {
		<-o.done
	}
}

// Snapshot returns the current state
func (o *Overlay) Snapshot() (entities.PlayerState, error) {
	return o.do(nil)
}

// Dispatch applies a user gesture and returns the resulting state
func (o *Overlay) Dispatch(g entities.Gesture) (entities.PlayerState, error) {
	if err := g.Validate(); err != nil {
		return entities.PlayerState{}, err
	}
	return o.do(func() error {
		o.applyGesture(g)
		return nil
	})
}

// HandlePlatformEvent applies a fullscreen notification from the hosting page
func (o *Overlay) HandlePlatformEvent(ev entities.PlatformEvent) (entities.PlayerState, error) {
	return o.do(func() error {
		switch ev.Type {
		case entities.PlatformFullscreenChange:
			o.confirmFullscreen(ev.Fullscreen)
		case entities.PlatformFullscreenError:
			if o.fullscreen.Pending {
				o.logger.Debug("Fullscreen request denied for session %s", o.id)
				o.revertFullscreen()
			}
		default:
			return fmt.Errorf("unknown platform event: %s", ev.Type)
		}
		return nil
	})
}

// SetDuration sets the session duration once it becomes known
func (o *Overlay) SetDuration(seconds float64) (entities.PlayerState, error) {
	return o.do(func() error {
		if !o.clock.SetDuration(seconds) {
			return ErrDurationFixed
		}
		return nil
	})
}

// TogglePlay flips between playing and paused
func (o *Overlay) TogglePlay() (entities.PlayerState, error) {
	return o.Dispatch(entities.Gesture{Type: entities.GestureTogglePlay})
}

// ToggleMute flips the muted flag without touching the volume level
func (o *Overlay) ToggleMute() (entities.PlayerState, error) {
	return o.Dispatch(entities.Gesture{Type: entities.GestureToggleMute})
}

// SetVolume sets the volume level; zero mutes and anything above unmutes
func (o *Overlay) SetVolume(level float64) (entities.PlayerState, error) {
	return o.Dispatch(entities.Gesture{Type: entities.GestureSetVolume, Value: level})
}

// Seek jumps to percent of the duration
func (o *Overlay) Seek(percent float64) (entities.PlayerState, error) {
	return o.Dispatch(entities.Gesture{Type: entities.GestureSeek, Value: percent})
}

// ToggleFullscreen requests the opposite fullscreen state
func (o *Overlay) ToggleFullscreen() (entities.PlayerState, error) {
	return o.Dispatch(entities.Gesture{Type: entities.GestureToggleFullscreen})
}

// PointerMove shows the controls and restarts the idle countdown
func (o *Overlay) PointerMove() (entities.PlayerState, error) {
	return o.Dispatch(entities.Gesture{Type: entities.GesturePointerMove})
}

// PointerLeave hides the controls at once while playing
func (o *Overlay) PointerLeave() (entities.PlayerState, error) {
	return o.Dispatch(entities.Gesture{Type: entities.GesturePointerLeave})
}

// SetVolumePopover shows or hides the vertical volume slider
func (o *Overlay) SetVolumePopover(visible bool) (entities.PlayerState, error) {
	g := entities.Gesture{Type: entities.GestureVolumeLeave}
	if visible {
		g.Type = entities.GestureVolumeEnter
	}
	return o.Dispatch(g)
}

// do runs apply on the loop and waits for the resulting snapshot
func (o *Overlay) do(apply func() error) (entities.PlayerState, error) {
	select {
	case <-o.done:
		return o.final, ErrOverlayUnmounted
	default:
	}
	if !o.running.Load() {
		return entities.PlayerState{SessionID: o.id, VideoID: o.videoID}, ErrOverlayNotMounted
	}

	reply := make(chan overlayReply, 1)
	select {
	case o.requests <- overlayRequest{apply: apply, reply: reply}:
	case <-o.done:
		return o.final, ErrOverlayUnmounted
	}
	r := <-reply
	return r.state, r.err
}

func (o *Overlay) run() {
	defer close(o.done)
	defer o.release()

	o.showControls()
	o.publish()

	for {
		select {
		case <-o.stop:
			return

		case req := <-o.requests:
			if o.stopping() {
				req.reply <- overlayReply{state: o.snapshot(), err: ErrOverlayUnmounted}
				return
			}
			var err error
			if req.apply != nil {
				err = req.apply()
				o.publish()
			}
			req.reply <- overlayReply{state: o.snapshot(), err: err}

		case <-o.ticker.C():
			if o.stopping() {
				return
			}
			o.clock.Advance()
			o.publish()

		case <-o.idle.C():
			o.idle.Fired()
			if o.stopping() {
				return
			}
			if o.playing {
				o.visibility.ControlsVisible = false
				o.publish()
			}

		case <-o.fsConfirm.C():
			o.fsConfirm.Fired()
			if o.stopping() {
				return
			}
			if o.fullscreen.Pending {
				o.logger.Debug("Fullscreen request unconfirmed for session %s, reverting", o.id)
				o.revertFullscreen()
				o.publish()
			}
		}
	}
}

func (o *Overlay) stopping() bool {
	select {
	case <-o.stop:
		return true
	default:
		return false
	}
}

// release cancels everything the overlay scheduled and closes the channel
func (o *Overlay) release() {
	o.ticker.Stop()
	o.idle.Stop()
	o.fsConfirm.Stop()
	o.link.Close()
	o.final = o.snapshot()
	o.final.Mounted = false
}

func (o *Overlay) applyGesture(g entities.Gesture) {
	switch g.Type {
	case entities.GestureTogglePlay:
		o.setPlaying(!o.playing)
	case entities.GestureToggleMute:
		o.toggleMute()
	case entities.GestureSetVolume:
		o.setVolume(g.Value)
	case entities.GestureSeek:
		o.seek(g.Value)
	case entities.GestureToggleFullscreen:
		o.toggleFullscreen()
	case entities.GesturePointerMove:
		o.showControls()
	case entities.GesturePointerLeave:
		if o.playing {
			o.visibility.ControlsVisible = false
			o.idle.Stop()
		}
	case entities.GestureVolumeEnter:
		o.visibility.VolumePopoverVisible = true
	case entities.GestureVolumeLeave:
		o.visibility.VolumePopoverVisible = false
	}
}

func (o *Overlay) setPlaying(playing bool) {
	o.playing = playing
	if playing {
		o.link.Send(entities.ActionPlay)
		o.ticker.Start(o.cfg.GetTickInterval())
		// a countdown that lapsed while paused must run again
		if o.visibility.ControlsVisible && !o.idle.Active() {
			o.idle.Reset(o.cfg.GetIdleTimeout())
		}
		return
	}
	o.ticker.Stop()
	o.link.Send(entities.ActionPause)
}

func (o *Overlay) toggleMute() {
	if !o.audio.IsMuted {
		o.audio.IsMuted = true
		o.link.Send(entities.ActionMute)
		return
	}

	o.audio.IsMuted = false
	o.link.Send(entities.ActionUnmute)
	if o.audio.VolumeLevel == 0 {
		o.audio.VolumeLevel = o.lastVolume
		o.link.Send(entities.ActionSetVolume, float64(o.lastVolume))
	}
}

func (o *Overlay) setVolume(v float64) {
	level := entities.ClampVolume(v)
	wasMuted := o.audio.IsMuted

	o.audio.VolumeLevel = level
	o.audio.IsMuted = level == 0
	if level > 0 {
		o.lastVolume = level
	}

	// the embed ignores volume while muted
	if wasMuted && !o.audio.IsMuted {
		o.link.Send(entities.ActionUnmute)
	}
	o.link.Send(entities.ActionSetVolume, float64(level))
}

func (o *Overlay) seek(percent float64) {
	if !o.clock.State(o.playing).DurationKnown() {
		return
	}
	t := o.clock.SeekPercent(percent)
	o.link.Send(entities.ActionSeekTo, t)
}

func (o *Overlay) toggleFullscreen() {
	target := !o.fullscreen.IsFullscreen
	if !o.fullscreen.Pending {
		o.fsBeforeFlip = o.fullscreen.IsFullscreen
	}
	o.fullscreen.IsFullscreen = target
	o.fullscreen.Pending = true

	if err := o.link.RequestFullscreen(target); err != nil {
		o.logger.Debug("Fullscreen request failed for session %s: %v", o.id, err)
		o.revertFullscreen()
		return
	}
	o.fsConfirm.Reset(o.cfg.GetFullscreenConfirm())
}

func (o *Overlay) confirmFullscreen(fullscreen bool) {
	o.fullscreen.IsFullscreen = fullscreen
	o.fullscreen.Pending = false
	o.fsConfirm.Stop()
}

func (o *Overlay) revertFullscreen() {
	o.fullscreen.IsFullscreen = o.fsBeforeFlip
	o.fullscreen.Pending = false
	o.fsConfirm.Stop()
}

func (o *Overlay) showControls() {
	o.visibility.ControlsVisible = true
	o.idle.Reset(o.cfg.GetIdleTimeout())
}

func (o *Overlay) snapshot() entities.PlayerState {
	return entities.PlayerState{
		SessionID:  o.id,
		VideoID:    o.videoID,
		Playback:   o.clock.State(o.playing),
		Audio:      o.audio,
		Visibility: o.visibility,
		Fullscreen: o.fullscreen,
		Mounted:    true,
	}
}

func (o *Overlay) publish() {
	if o.observer != nil {
		o.observer(o.snapshot())
	}
}
