package services

import (
	"github.com/fredcamaral/vidwatch/internal/domain/entities"
)

// PlaybackClock simulates elapsed time locally. The embed never reports its
// position, so this is what the scrubber shows.
type PlaybackClock struct {
	current  float64
	duration float64
	progress float64
}

// NewPlaybackClock creates a clock with an unknown duration
func NewPlaybackClock() *PlaybackClock {
	return &PlaybackClock{}
}

// SetDuration fixes the duration; it can only be set once and must be positive
func (c *PlaybackClock) SetDuration(seconds float64) bool {
	if c.duration > 0 || seconds <= 0 {
		return false
	}
	c.duration = seconds
	c.recompute()
	return true
}

// Advance moves the clock forward one second, looping to 0 at the end
func (c *PlaybackClock) Advance() {
	if c.duration <= 0 {
		return
	}
	next := c.current + 1
	if next >= c.duration {
		next = 0
	}
	c.current = next
	c.recompute()
}

// SeekPercent jumps to p percent of the duration and returns the new time
func (c *PlaybackClock) SeekPercent(p float64) float64 {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	if c.duration <= 0 {
		return c.current
	}
	c.current = c.duration * p / 100
	c.progress = p
	return c.current
}

// State returns the clock fields of a PlaybackState
func (c *PlaybackClock) State(playing bool) entities.PlaybackState {
	return entities.PlaybackState{
		IsPlaying:          playing,
		CurrentTimeSeconds: c.current,
		DurationSeconds:    c.duration,
		ProgressPercent:    c.progress,
	}
}

func (c *PlaybackClock) recompute() {
	c.progress = entities.ProgressOf(c.current, c.duration)
}
