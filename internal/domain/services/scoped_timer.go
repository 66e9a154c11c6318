package services

import (
	"time"

	"github.com/fredcamaral/vidwatch/internal/domain/ports"
)

// scopedTimer owns at most one pending countdown. Reset always releases the
// previous countdown before arming a new one, and Stop releases it for good.
// The owning loop selects on C(); a nil channel blocks forever, so a
// released countdown can never fire.
type scopedTimer struct {
	clock ports.TimeProvider
	timer ports.Timer
}

func newScopedTimer(clock ports.TimeProvider) *scopedTimer {
	return &scopedTimer{clock: clock}
}

// Reset cancels any pending countdown and arms a new one for d
func (t *scopedTimer) Reset(d time.Duration) {
	t.Stop()
	t.timer = t.clock.NewTimer(d)
}

// Stop cancels the pending countdown, if any
func (t *scopedTimer) Stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Active reports whether a countdown is pending
func (t *scopedTimer) Active() bool {
	return t.timer != nil
}

// C returns the pending countdown's channel, or nil when nothing is pending
func (t *scopedTimer) C() <-chan time.Time {
	if t.timer == nil {
		return nil
	}
	return t.timer.C()
}

// Fired marks the countdown as consumed after its channel delivered
func (t *scopedTimer) Fired() {
	t.timer = nil
}

// scopedTicker owns at most one running ticker, with the same release rules
type scopedTicker struct {
	clock  ports.TimeProvider
	ticker ports.Ticker
}

func newScopedTicker(clock ports.TimeProvider) *scopedTicker {
	return &scopedTicker{clock: clock}
}

// Start stops any running ticker and starts a new one
func (t *scopedTicker) Start(d time.Duration) {
	t.Stop()
	t.ticker = t.clock.NewTicker(d)
}

// Stop stops the running ticker, if any
func (t *scopedTicker) Stop() {
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}
}

// Active reports whether a ticker is running
func (t *scopedTicker) Active() bool {
	return t.ticker != nil
}

// C returns the running ticker's channel, or nil when stopped
func (t *scopedTicker) C() <-chan time.Time {
	if t.ticker == nil {
		return nil
	}
	return t.ticker.C()
}
