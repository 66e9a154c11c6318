package entities

import (
	"errors"
	"fmt"
	"math"
)

// PlaybackState is the locally simulated playback position of an overlay
type PlaybackState struct {
	IsPlaying          bool    `json:"is_playing"`
	CurrentTimeSeconds float64 `json:"current_time_seconds"`
	DurationSeconds    float64 `json:"duration_seconds"`
	ProgressPercent    float64 `json:"progress_percent"`
}

// DurationKnown reports whether the session duration has been set
func (p PlaybackState) DurationKnown() bool {
	return p.DurationSeconds > 0
}

// AudioState holds the volume axis of the overlay
type AudioState struct {
	VolumeLevel int  `json:"volume_level"`
	IsMuted     bool `json:"is_muted"`
}

// EffectiveVolume is the level the slider shows: zero while muted
func (a AudioState) EffectiveVolume() int {
	if a.IsMuted {
		return 0
	}
	return a.VolumeLevel
}

// VisibilityState holds what parts of the overlay chrome are shown
type VisibilityState struct {
	ControlsVisible      bool `json:"controls_visible"`
	VolumePopoverVisible bool `json:"volume_popover_visible"`
}

// FullscreenState tracks the fullscreen axis and any unconfirmed request
type FullscreenState struct {
	IsFullscreen bool `json:"is_fullscreen"`
	// Pending is true between an optimistic toggle and the platform's answer
	Pending bool `json:"pending"`
}

// PlayerState is a point-in-time copy of everything the overlay owns
type PlayerState struct {
	SessionID  string          `json:"session_id"`
	VideoID    string          `json:"video_id"`
	Playback   PlaybackState   `json:"playback"`
	Audio      AudioState      `json:"audio"`
	Visibility VisibilityState `json:"visibility"`
	Fullscreen FullscreenState `json:"fullscreen"`
	Mounted    bool            `json:"mounted"`
}

// CurrentTimeLabel returns the elapsed time as M:SS
func (s PlayerState) CurrentTimeLabel() string {
	return FormatClock(s.Playback.CurrentTimeSeconds)
}

// DurationLabel returns the duration as M:SS
func (s PlayerState) DurationLabel() string {
	return FormatClock(s.Playback.DurationSeconds)
}

// GestureType enumerates the user gestures an overlay accepts
type GestureType string

const (
	GestureTogglePlay       GestureType = "toggle_play"
	GestureToggleMute       GestureType = "toggle_mute"
	GestureToggleFullscreen GestureType = "toggle_fullscreen"
	GestureSeek             GestureType = "seek"
	GestureSetVolume        GestureType = "set_volume"
	GesturePointerMove      GestureType = "pointer_move"
	GesturePointerLeave     GestureType = "pointer_leave"
	GestureVolumeEnter      GestureType = "volume_enter"
	GestureVolumeLeave      GestureType = "volume_leave"
)

// Gesture is a user action delivered to an overlay. Value carries the
// percent for seek and the level for set_volume.
type Gesture struct {
	Type  GestureType `json:"type"`
	Value float64     `json:"value,omitempty"`
}

// Validate checks that the gesture is known and its value is usable
func (g Gesture) Validate() error {
	switch g.Type {
	case GestureTogglePlay, GestureToggleMute, GestureToggleFullscreen,
		GesturePointerMove, GesturePointerLeave, GestureVolumeEnter, GestureVolumeLeave:
		return nil
	case GestureSeek, GestureSetVolume:
		if math.IsNaN(g.Value) || math.IsInf(g.Value, 0) {
			return fmt.Errorf("gesture %s: value must be a finite number", g.Type)
		}
		return nil
	case "":
		return errors.New("gesture type is required")
	default:
		return fmt.Errorf("unknown gesture type: %s", g.Type)
	}
}

// PlatformEventType enumerates notifications coming from the page hosting the embed
type PlatformEventType string

const (
	PlatformFullscreenChange PlatformEventType = "fullscreen_change"
	PlatformFullscreenError  PlatformEventType = "fullscreen_error"
)

// PlatformEvent is a fullscreen notification raised by the hosting platform
type PlatformEvent struct {
	Type       PlatformEventType `json:"type"`
	Fullscreen bool              `json:"fullscreen"`
}

// FormatClock renders seconds as M:SS, the format used under the scrubber
func FormatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// ProgressOf returns t as a percentage of duration, clamped to [0,100].
// A zero duration yields zero.
func ProgressOf(t, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	p := t / duration * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// ClampVolume bounds v to the 0-100 slider range
func ClampVolume(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
