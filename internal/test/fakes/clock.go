// Package fakes holds hand-driven stand-ins for clocks and embedded surfaces.
package fakes

import (
	"sync"
	"time"

	"github.com/fredcamaral/vidwatch/internal/domain/ports"
)

// fireTimeout bounds how long Fire waits for a receiver
const fireTimeout = time.Second

// Clock is a TimeProvider whose tickers and timers only fire when told to
type Clock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*Ticker
	timers  []*Timer
}

// NewClock creates a fake clock starting at a fixed instant
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// Now returns the fake current time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the fake time forward without firing anything
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewTicker records and returns a fake ticker
func (c *Clock) NewTicker(d time.Duration) ports.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &Ticker{Interval: d, ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

// NewTimer records and returns a fake timer
func (c *Clock) NewTimer(d time.Duration) ports.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &Timer{ch: make(chan time.Time), duration: d}
	c.timers = append(c.timers, t)
	return t
}

// Tickers returns every ticker created so far
func (c *Clock) Tickers() []*Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Ticker(nil), c.tickers...)
}

// ActiveTickers counts tickers that have not been stopped
func (c *Clock) ActiveTickers() int {
	n := 0
	for _, t := range c.Tickers() {
		if !t.Stopped() {
			n++
		}
	}
	return n
}

// ActiveTicker returns the most recent running ticker, or nil
func (c *Clock) ActiveTicker() *Ticker {
	tickers := c.Tickers()
	for i := len(tickers) - 1; i >= 0; i-- {
		if !tickers[i].Stopped() {
			return tickers[i]
		}
	}
	return nil
}

// Timers returns every timer created so far
func (c *Clock) Timers() []*Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Timer(nil), c.timers...)
}

// PendingTimer returns the most recent pending timer armed for d, or nil
func (c *Clock) PendingTimer(d time.Duration) *Timer {
	timers := c.Timers()
	for i := len(timers) - 1; i >= 0; i-- {
		if timers[i].Pending() && timers[i].Duration() == d {
			return timers[i]
		}
	}
	return nil
}

// PendingTimers counts timers that are neither stopped nor fired
func (c *Clock) PendingTimers() int {
	n := 0
	for _, t := range c.Timers() {
		if t.Pending() {
			n++
		}
	}
	return n
}

// Ticker is a fake ports.Ticker
type Ticker struct {
	Interval time.Duration

	mu      sync.Mutex
	ch      chan time.Time
	stopped bool
}

// C returns the tick channel
func (t *Ticker) C() <-chan time.Time {
	return t.ch
}

// Stop stops the ticker
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

// Stopped reports whether Stop was called
func (t *Ticker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Fire delivers one tick and waits until it is received. It returns false
// for a stopped ticker or when nobody receives within a second.
func (t *Ticker) Fire() bool {
	if t.Stopped() {
		return false
	}
	select {
	case t.ch <- time.Now():
		return true
	case <-time.After(fireTimeout):
		return false
	}
}

// Timer is a fake ports.Timer
type Timer struct {
	mu       sync.Mutex
	ch       chan time.Time
	duration time.Duration
	stopped  bool
	fired    bool
}

// C returns the expiry channel
func (t *Timer) C() <-chan time.Time {
	return t.ch
}

// Stop cancels the timer and reports whether it was pending
func (t *Timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasPending := !t.stopped && !t.fired
	t.stopped = true
	return wasPending
}

// Reset re-arms the timer for d
func (t *Timer) Reset(d time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasPending := !t.stopped && !t.fired
	t.duration = d
	t.stopped = false
	t.fired = false
	return wasPending
}

// Duration returns the armed duration
func (t *Timer) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration
}

// Pending reports whether the timer can still fire
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped && !t.fired
}

// Fire delivers the expiry and waits until it is received. It returns false
// for a stopped or already fired timer, or when nobody receives in time.
func (t *Timer) Fire() bool {
	if !t.Pending() {
		return false
	}
	select {
	case t.ch <- time.Now():
		t.mu.Lock()
		t.fired = true
		t.mu.Unlock()
		return true
	case <-time.After(fireTimeout):
		return false
	}
}

var _ ports.TimeProvider = (*Clock)(nil)
