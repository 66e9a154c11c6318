package ports

import "time"

// TimeProvider abstracts the clock the player overlay schedules against.
// Tests substitute a provider whose tickers and timers fire on demand.
type TimeProvider interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
	NewTimer(d time.Duration) Timer
}

// Ticker abstracts time.Ticker for testability
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Timer abstracts time.Timer for testability
type Timer interface {
	C() <-chan time.Time
	Stop() bool
	Reset(d time.Duration) bool
}

// SystemClock implements TimeProvider with the time package
type SystemClock struct{}

// NewSystemClock creates a TimeProvider backed by the wall clock
func NewSystemClock() TimeProvider {
	return SystemClock{}
}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// NewTicker creates a new ticker
func (SystemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{ticker: time.NewTicker(d)}
}

// NewTimer creates a new timer
func (SystemClock) NewTimer(d time.Duration) Timer {
	return &systemTimer{timer: time.NewTimer(d)}
}

type systemTicker struct {
	ticker *time.Ticker
}

func (t *systemTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t *systemTicker) Stop() {
	t.ticker.Stop()
}

type systemTimer struct {
	timer *time.Timer
}

func (t *systemTimer) C() <-chan time.Time {
	return t.timer.C
}

func (t *systemTimer) Stop() bool {
	return t.timer.Stop()
}

func (t *systemTimer) Reset(d time.Duration) bool {
	return t.timer.Reset(d)
}
