// ABOUTME: One-shot timer where arming again resets the countdown.
// ABOUTME: Backs the cache's settle period; clock is injectable for tests.

package alarm

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Alarm runs a callback once after a delay. Set replaces any pending
// countdown, so the most recent call wins and at most one timer is
// outstanding at a time.
//
// The zero value is not usable; construct with New or NewWithClock.
type Alarm struct {
	mu    sync.Mutex
	clk   clock.Clock
	timer *clock.Timer
}

// New returns an Alarm driven by the wall clock.
func New() *Alarm {
	return NewWithClock(clock.New())
}

// NewWithClock returns an Alarm driven by clk. Tests pass clock.NewMock()
// and advance it to fire the callback deterministically.
func NewWithClock(clk clock.Clock) *Alarm {
	return &Alarm{clk: clk}
}

// Set schedules fn to run once after d, cancelling any pending countdown
// first. fn runs on the clock's timer goroutine, not the caller's.
func (a *Alarm) Set(d time.Duration, fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = a.clk.AfterFunc(d, fn)
}

// Cancel stops the pending countdown, if any. It does not wait for a
// callback that has already started running, so callers that need
// exclusion must take their own lock inside the callback.
func (a *Alarm) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
