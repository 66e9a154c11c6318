package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/test/fakes"
)

const (
	testEmbedOrigin   = "https://www.youtube.com"
	idleTimeout       = 3 * time.Second
	fullscreenConfirm = 2 * time.Second
)

type overlayFixture struct {
	overlay *Overlay
	clock   *fakes.Clock
	surface *fakes.Surface
	channel *CommandChannel
}

func newOverlayFixture(t *testing.T, duration float64) *overlayFixture {
	t.Helper()

	clock := fakes.NewClock()
	surface := fakes.NewSurface("surface-1", testEmbedOrigin)
	channel, err := NewCommandChannel(testEmbedOrigin, nil)
	require.NoError(t, err)
	require.NoError(t, channel.Attach(surface))

	overlay := NewOverlay(OverlayOptions{
		SessionID:       "session-1",
		VideoID:         "dQw4w9WgXcQ",
		DurationSeconds: duration,
		Clock:           clock,
	}, channel)
	overlay.Mount()
	t.Cleanup(overlay.Unmount)

	// first request runs after the loop armed the idle countdown
	_, err = overlay.Snapshot()
	require.NoError(t, err)

	return &overlayFixture{overlay: overlay, clock: clock, surface: surface, channel: channel}
}

func (f *overlayFixture) state(t *testing.T) entities.PlayerState {
	t.Helper()
	s, err := f.overlay.Snapshot()
	require.NoError(t, err)
	return s
}

func TestOverlayMount(t *testing.T) {
	f := newOverlayFixture(t, 420)
	s := f.state(t)

	assert.True(t, s.Mounted)
	assert.True(t, s.Visibility.ControlsVisible)
	assert.False(t, s.Visibility.VolumePopoverVisible)
	assert.False(t, s.Playback.IsPlaying)
	assert.Equal(t, 420.0, s.Playback.DurationSeconds)
	assert.Equal(t, 100, s.Audio.VolumeLevel)
	assert.False(t, s.Audio.IsMuted)
	assert.NotNil(t, f.clock.PendingTimer(idleTimeout), "idle countdown armed on mount")
	assert.Empty(t, f.surface.Commands(), "mount sends nothing")
}

func TestOverlayTogglePlay(t *testing.T) {
	f := newOverlayFixture(t, 420)

	s, err := f.overlay.TogglePlay()
	require.NoError(t, err)
	assert.True(t, s.Playback.IsPlaying)
	assert.Equal(t, []string{"playVideo"}, f.surface.Commands())
	assert.Equal(t, 1, f.clock.ActiveTickers())
	assert.Equal(t, time.Second, f.clock.ActiveTicker().Interval)

	s, err = f.overlay.TogglePlay()
	require.NoError(t, err)
	assert.False(t, s.Playback.IsPlaying)
	assert.Equal(t, []string{"playVideo", "pauseVideo"}, f.surface.Commands())
	assert.Equal(t, 0, f.clock.ActiveTickers())
}

func TestOverlayClockAdvancesOnlyWhilePlaying(t *testing.T) {
	f := newOverlayFixture(t, 420)

	_, err := f.overlay.TogglePlay()
	require.NoError(t, err)
	ticker := f.clock.ActiveTicker()
	require.NotNil(t, ticker)

	for i := 0; i < 3; i++ {
		require.True(t, ticker.Fire())
	}
	s := f.state(t)
	assert.Equal(t, 3.0, s.Playback.CurrentTimeSeconds)
	assert.InDelta(t, 3.0/420*100, s.Playback.ProgressPercent, 1e-9)

	_, err = f.overlay.TogglePlay()
	require.NoError(t, err)
	assert.False(t, ticker.Fire(), "paused clock does not tick")
	assert.Equal(t, 3.0, f.state(t).Playback.CurrentTimeSeconds)
}

func TestOverlayClockLoops(t *testing.T) {
	f := newOverlayFixture(t, 420)

	_, err := f.overlay.TogglePlay()
	require.NoError(t, err)
	ticker := f.clock.ActiveTicker()

	for i := 0; i < 419; i++ {
		require.True(t, ticker.Fire())
	}
	s := f.state(t)
	require.Equal(t, 419.0, s.Playback.CurrentTimeSeconds)

	require.True(t, ticker.Fire())
	s = f.state(t)
	assert.Equal(t, 0.0, s.Playback.CurrentTimeSeconds)
	assert.Equal(t, 0.0, s.Playback.ProgressPercent)
	assert.True(t, s.Playback.IsPlaying, "looping keeps playing")
}

func TestOverlayRapidTogglesKeepOneTicker(t *testing.T) {
	f := newOverlayFixture(t, 420)

	for i := 0; i < 5; i++ {
		_, err := f.overlay.TogglePlay() // play
		require.NoError(t, err)
		_, err = f.overlay.TogglePlay() // pause
		require.NoError(t, err)
	}
	_, err := f.overlay.TogglePlay()
	require.NoError(t, err)

	assert.Equal(t, 1, f.clock.ActiveTickers())
	for _, stale := range f.clock.Tickers()[:len(f.clock.Tickers())-1] {
		assert.False(t, stale.Fire(), "stopped tickers never deliver")
	}

	require.True(t, f.clock.ActiveTicker().Fire())
	assert.Equal(t, 1.0, f.state(t).Playback.CurrentTimeSeconds, "no double-speed advancement")
}

func TestOverlaySeek(t *testing.T) {
	t.Run("seek emits exactly one seekTo", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		s, err := f.overlay.Seek(50)
		require.NoError(t, err)

		assert.Equal(t, []string{"seekTo,210"}, f.surface.Commands())
		assert.Equal(t, 210.0, s.Playback.CurrentTimeSeconds)
		assert.Equal(t, 50.0, s.Playback.ProgressPercent)
	})

	t.Run("seek clamps out of range percent", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		s, err := f.overlay.Seek(150)
		require.NoError(t, err)
		assert.Equal(t, 420.0, s.Playback.CurrentTimeSeconds)
		assert.Equal(t, 100.0, s.Playback.ProgressPercent)

		s, err = f.overlay.Seek(-5)
		require.NoError(t, err)
		assert.Equal(t, 0.0, s.Playback.CurrentTimeSeconds)
		assert.Equal(t, []string{"seekTo,420", "seekTo,0"}, f.surface.Commands())
	})

	t.Run("seek without duration does nothing", func(t *testing.T) {
		f := newOverlayFixture(t, 0)

		s, err := f.overlay.Seek(50)
		require.NoError(t, err)
		assert.Equal(t, 0.0, s.Playback.CurrentTimeSeconds)
		assert.Equal(t, 0.0, s.Playback.ProgressPercent)
		assert.Empty(t, f.surface.Commands())
	})

	t.Run("ticking resumes from the seek position", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		_, err := f.overlay.Seek(50)
		require.NoError(t, err)
		_, err = f.overlay.TogglePlay()
		require.NoError(t, err)
		require.True(t, f.clock.ActiveTicker().Fire())

		s := f.state(t)
		assert.Equal(t, 211.0, s.Playback.CurrentTimeSeconds)
		assert.InDelta(t, 211.0/420*100, s.Playback.ProgressPercent, 1e-9)
	})
}

func TestOverlayVolume(t *testing.T) {
	t.Run("zero volume mutes", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		s, err := f.overlay.SetVolume(0)
		require.NoError(t, err)
		assert.True(t, s.Audio.IsMuted)
		assert.Equal(t, 0, s.Audio.VolumeLevel)
		assert.Equal(t, []string{"setVolume,0"}, f.surface.Commands())
	})

	t.Run("positive volume unmutes", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		_, err := f.overlay.ToggleMute()
		require.NoError(t, err)
		s, err := f.overlay.SetVolume(35)
		require.NoError(t, err)

		assert.False(t, s.Audio.IsMuted)
		assert.Equal(t, 35, s.Audio.VolumeLevel)
		assert.Equal(t, []string{"mute", "unMute", "setVolume,35"}, f.surface.Commands())
	})

	t.Run("volume is clamped", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		s, err := f.overlay.SetVolume(250)
		require.NoError(t, err)
		assert.Equal(t, 100, s.Audio.VolumeLevel)

		s, err = f.overlay.SetVolume(-3)
		require.NoError(t, err)
		assert.Equal(t, 0, s.Audio.VolumeLevel)
		assert.True(t, s.Audio.IsMuted)
	})

	t.Run("toggle mute keeps volume level", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		_, err := f.overlay.SetVolume(60)
		require.NoError(t, err)
		s, err := f.overlay.ToggleMute()
		require.NoError(t, err)
		assert.True(t, s.Audio.IsMuted)
		assert.Equal(t, 60, s.Audio.VolumeLevel)
		assert.Equal(t, 0, s.Audio.EffectiveVolume())

		s, err = f.overlay.ToggleMute()
		require.NoError(t, err)
		assert.False(t, s.Audio.IsMuted)
		assert.Equal(t, 60, s.Audio.VolumeLevel)
		assert.Equal(t, []string{"setVolume,60", "mute", "unMute"}, f.surface.Commands())
	})

	t.Run("unmute after dragging to zero restores last volume", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		_, err := f.overlay.SetVolume(40)
		require.NoError(t, err)
		_, err = f.overlay.SetVolume(0)
		require.NoError(t, err)
		s, err := f.overlay.ToggleMute()
		require.NoError(t, err)

		assert.False(t, s.Audio.IsMuted)
		assert.Equal(t, 40, s.Audio.VolumeLevel)
		assert.Equal(t, []string{"setVolume,40", "setVolume,0", "unMute", "setVolume,40"}, f.surface.Commands())
	})
}

func TestOverlayIdleVisibility(t *testing.T) {
	t.Run("idle expiry never hides controls while paused", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		for i := 0; i < 3; i++ {
			timer := f.clock.PendingTimer(idleTimeout)
			require.NotNil(t, timer)
			require.True(t, timer.Fire())
			assert.True(t, f.state(t).Visibility.ControlsVisible)

			_, err := f.overlay.PointerMove()
			require.NoError(t, err)
		}
	})

	t.Run("idle expiry hides controls while playing", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		_, err := f.overlay.TogglePlay()
		require.NoError(t, err)
		require.True(t, f.clock.PendingTimer(idleTimeout).Fire())
		assert.False(t, f.state(t).Visibility.ControlsVisible)

		s, err := f.overlay.PointerMove()
		require.NoError(t, err)
		assert.True(t, s.Visibility.ControlsVisible)
		assert.NotNil(t, f.clock.PendingTimer(idleTimeout))
	})

	t.Run("countdown lapsed while paused runs again on play", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		require.True(t, f.clock.PendingTimer(idleTimeout).Fire())
		require.Nil(t, f.clock.PendingTimer(idleTimeout))

		s, err := f.overlay.TogglePlay()
		require.NoError(t, err)
		assert.True(t, s.Visibility.ControlsVisible)

		timer := f.clock.PendingTimer(idleTimeout)
		require.NotNil(t, timer, "play re-arms the idle countdown")
		require.True(t, timer.Fire())
		assert.False(t, f.state(t).Visibility.ControlsVisible)
	})

	t.Run("play keeps a pending countdown", func(t *testing.T) {
		f := newOverlayFixture(t, 420)
		armed := f.clock.PendingTimer(idleTimeout)

		_, err := f.overlay.TogglePlay()
		require.NoError(t, err)
		assert.True(t, armed.Pending())
		assert.Equal(t, 1, f.clock.PendingTimers())
	})

	t.Run("pointer move cancels the previous countdown", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		first := f.clock.PendingTimer(idleTimeout)
		_, err := f.overlay.PointerMove()
		require.NoError(t, err)

		assert.False(t, first.Pending())
		assert.False(t, first.Fire())
		assert.Equal(t, 1, f.clock.PendingTimers())
	})

	t.Run("pointer leave hides at once only while playing", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		s, err := f.overlay.PointerLeave()
		require.NoError(t, err)
		assert.True(t, s.Visibility.ControlsVisible)

		_, err = f.overlay.TogglePlay()
		require.NoError(t, err)
		s, err = f.overlay.PointerLeave()
		require.NoError(t, err)
		assert.False(t, s.Visibility.ControlsVisible)
	})

	t.Run("volume popover follows pointer", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		s, err := f.overlay.SetVolumePopover(true)
		require.NoError(t, err)
		assert.True(t, s.Visibility.VolumePopoverVisible)

		s, err = f.overlay.SetVolumePopover(false)
		require.NoError(t, err)
		assert.False(t, s.Visibility.VolumePopoverVisible)
	})
}

func TestOverlayFullscreen(t *testing.T) {
	t.Run("platform confirmation settles the flag", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		s, err := f.overlay.ToggleFullscreen()
		require.NoError(t, err)
		assert.True(t, s.Fullscreen.IsFullscreen)
		assert.True(t, s.Fullscreen.Pending)
		assert.Equal(t, []bool{true}, f.surface.FullscreenRequests())

		s, err = f.overlay.HandlePlatformEvent(entities.PlatformEvent{Type: entities.PlatformFullscreenChange, Fullscreen: true})
		require.NoError(t, err)
		assert.True(t, s.Fullscreen.IsFullscreen)
		assert.False(t, s.Fullscreen.Pending)
		assert.Nil(t, f.clock.PendingTimer(fullscreenConfirm))
	})

	t.Run("platform error reverts the optimistic flag", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		_, err := f.overlay.ToggleFullscreen()
		require.NoError(t, err)
		s, err := f.overlay.HandlePlatformEvent(entities.PlatformEvent{Type: entities.PlatformFullscreenError})
		require.NoError(t, err)

		assert.False(t, s.Fullscreen.IsFullscreen)
		assert.False(t, s.Fullscreen.Pending)
	})

	t.Run("unconfirmed request reverts after the confirm window", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		_, err := f.overlay.ToggleFullscreen()
		require.NoError(t, err)
		timer := f.clock.PendingTimer(fullscreenConfirm)
		require.NotNil(t, timer)
		require.True(t, timer.Fire())

		s := f.state(t)
		assert.False(t, s.Fullscreen.IsFullscreen)
		assert.False(t, s.Fullscreen.Pending)
	})

	t.Run("synchronous request failure reverts at once", func(t *testing.T) {
		f := newOverlayFixture(t, 420)
		f.surface.FailFullscreen(errors.New("not allowed"))

		s, err := f.overlay.ToggleFullscreen()
		require.NoError(t, err)
		assert.False(t, s.Fullscreen.IsFullscreen)
		assert.False(t, s.Fullscreen.Pending)
	})

	t.Run("no surface means no fullscreen", func(t *testing.T) {
		f := newOverlayFixture(t, 420)
		f.channel.Detach(f.surface)

		s, err := f.overlay.ToggleFullscreen()
		require.NoError(t, err)
		assert.False(t, s.Fullscreen.IsFullscreen)
	})

	t.Run("platform exit is applied without a request", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		_, err := f.overlay.ToggleFullscreen()
		require.NoError(t, err)
		_, err = f.overlay.HandlePlatformEvent(entities.PlatformEvent{Type: entities.PlatformFullscreenChange, Fullscreen: true})
		require.NoError(t, err)

		// user pressed ESC
		s, err := f.overlay.HandlePlatformEvent(entities.PlatformEvent{Type: entities.PlatformFullscreenChange, Fullscreen: false})
		require.NoError(t, err)
		assert.False(t, s.Fullscreen.IsFullscreen)
	})

	t.Run("stray platform error is ignored", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		_, err := f.overlay.HandlePlatformEvent(entities.PlatformEvent{Type: entities.PlatformFullscreenChange, Fullscreen: true})
		require.NoError(t, err)
		s, err := f.overlay.HandlePlatformEvent(entities.PlatformEvent{Type: entities.PlatformFullscreenError})
		require.NoError(t, err)
		assert.True(t, s.Fullscreen.IsFullscreen)
	})

	t.Run("unknown platform event is rejected", func(t *testing.T) {
		f := newOverlayFixture(t, 420)

		_, err := f.overlay.HandlePlatformEvent(entities.PlatformEvent{Type: "resize"})
		assert.Error(t, err)
	})
}

func TestOverlayUnmount(t *testing.T) {
	f := newOverlayFixture(t, 420)

	_, err := f.overlay.TogglePlay()
	require.NoError(t, err)
	_, err = f.overlay.ToggleFullscreen()
	require.NoError(t, err)
	ticker := f.clock.ActiveTicker()
	require.True(t, ticker.Fire())
	before := f.state(t)
	sent := len(f.surface.Commands())

	f.overlay.Unmount()

	assert.Equal(t, 0, f.clock.ActiveTickers())
	assert.Equal(t, 0, f.clock.PendingTimers())
	assert.False(t, ticker.Fire())
	assert.False(t, f.channel.Attached())

	s, err := f.overlay.TogglePlay()
	assert.ErrorIs(t, err, ErrOverlayUnmounted)
	assert.False(t, s.Mounted)
	assert.Equal(t, before.Playback.CurrentTimeSeconds, s.Playback.CurrentTimeSeconds)

	_, err = f.overlay.Seek(10)
	assert.ErrorIs(t, err, ErrOverlayUnmounted)
	assert.Len(t, f.surface.Commands(), sent, "no commands after unmount")

	select {
	case <-f.overlay.Done():
	default:
		t.Fatal("Done not closed after Unmount")
	}

	// second unmount is a no-op
	f.overlay.Unmount()
}

func TestOverlayUnmountBeforeMount(t *testing.T) {
	channel, err := NewCommandChannel(testEmbedOrigin, nil)
	require.NoError(t, err)
	o := NewOverlay(OverlayOptions{SessionID: "s", DurationSeconds: 10, Clock: fakes.NewClock()}, channel)

	o.Unmount()
	o.Mount()

	_, err = o.Snapshot()
	assert.ErrorIs(t, err, ErrOverlayUnmounted)
}

func TestOverlayCallsBeforeMount(t *testing.T) {
	channel, err := NewCommandChannel(testEmbedOrigin, nil)
	require.NoError(t, err)
	surface := fakes.NewSurface("surface-1", testEmbedOrigin)
	require.NoError(t, channel.Attach(surface))
	o := NewOverlay(OverlayOptions{SessionID: "early", VideoID: "v", DurationSeconds: 10, Clock: fakes.NewClock()}, channel)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s, err := o.TogglePlay()
		assert.ErrorIs(t, err, ErrOverlayNotMounted)
		assert.Equal(t, "early", s.SessionID)
		assert.False(t, s.Mounted)

		_, err = o.Snapshot()
		assert.ErrorIs(t, err, ErrOverlayNotMounted)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("call before Mount blocked")
	}
	assert.Empty(t, surface.Commands())

	o.Mount()
	defer o.Unmount()
	s, err := o.TogglePlay()
	require.NoError(t, err)
	assert.True(t, s.Playback.IsPlaying)
}

func TestOverlaySetDuration(t *testing.T) {
	f := newOverlayFixture(t, 0)

	s, err := f.overlay.SetDuration(300)
	require.NoError(t, err)
	assert.Equal(t, 300.0, s.Playback.DurationSeconds)

	_, err = f.overlay.SetDuration(600)
	assert.ErrorIs(t, err, ErrDurationFixed)
	assert.Equal(t, 300.0, f.state(t).Playback.DurationSeconds)
}

func TestOverlayDropsCommandsForUnreadySurface(t *testing.T) {
	f := newOverlayFixture(t, 420)
	f.surface.SetReady(false)

	s, err := f.overlay.TogglePlay()
	require.NoError(t, err)
	assert.True(t, s.Playback.IsPlaying, "local state updates even when the command is dropped")
	assert.Empty(t, f.surface.Commands())
}

func TestOverlayRejectsInvalidGesture(t *testing.T) {
	f := newOverlayFixture(t, 420)

	_, err := f.overlay.Dispatch(entities.Gesture{Type: "wiggle"})
	assert.Error(t, err)
	_, err = f.overlay.Dispatch(entities.Gesture{})
	assert.Error(t, err)
}

func TestOverlayObserver(t *testing.T) {
	var (
		mu     sync.Mutex
		states []entities.PlayerState
	)
	channel, err := NewCommandChannel(testEmbedOrigin, nil)
	require.NoError(t, err)
	clock := fakes.NewClock()

	o := NewOverlay(OverlayOptions{
		SessionID:       "observed",
		DurationSeconds: 60,
		Clock:           clock,
		Observer: func(s entities.PlayerState) {
			mu.Lock()
			defer mu.Unlock()
			states = append(states, s)
		},
	}, channel)
	o.Mount()
	defer o.Unmount()

	_, err = o.TogglePlay()
	require.NoError(t, err)
	require.True(t, clock.ActiveTicker().Fire())
	_, err = o.Snapshot()
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, states, 3, "mount, toggle and tick each publish once")
	assert.True(t, states[1].Playback.IsPlaying)
	assert.Equal(t, 1.0, states[2].Playback.CurrentTimeSeconds)
	assert.Equal(t, "observed", states[2].SessionID)
}
