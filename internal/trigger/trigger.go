// Package trigger provides the single-timer primitive that drives the
// alarm: given a target time it fires one callback when the target is
// reached. It is a best-effort polling mechanism; precision is bounded by
// the poll interval.
package trigger

import (
	"sync"
	"time"
)

// DefaultPollInterval is how often an armed scheduler checks the clock.
const DefaultPollInterval = 5 * time.Second

// Scheduler holds at most one pending trigger. Start replaces any pending
// trigger, Cancel clears it, and the registered callback is invoked exactly
// once per armed target. The callback receives the target it was armed for:
// a firing can race with a concurrent Start, so consumers compare the fired
// target against their own pending one and discard mismatches. All methods
// are safe for concurrent use; the scheduler serializes itself so callers
// never have to.
type Scheduler struct {
	mu       sync.Mutex
	now      func() time.Time
	interval time.Duration
	callback func(time.Time)
	target   time.Time
	stop     chan struct{}
}

// New returns a scheduler polling every DefaultPollInterval.
func New() *Scheduler {
	return NewWithClock(time.Now, DefaultPollInterval)
}

// NewWithClock returns a scheduler with an injected clock and poll
// interval. Tests use this to avoid waiting on wall time.
func NewWithClock(now func() time.Time, interval time.Duration) *Scheduler {
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Scheduler{now: now, interval: interval}
}

// OnTrigger registers the callback invoked when an armed target is
// reached. Registering replaces any previous callback.
func (s *Scheduler) OnTrigger(callback func(target time.Time)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callback = callback
}

// Start arms the scheduler for the target time. Any previously pending
// trigger is canceled first, so there is never more than one.
func (s *Scheduler) Start(target time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()

	stop := make(chan struct{})
	s.stop = stop
	s.target = target

	go s.poll(stop, target)
}

// Cancel clears the pending trigger. Calling it when nothing is pending is
// a no-op.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

// Pending reports the currently armed target, if any.
func (s *Scheduler) Pending() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target, s.stop != nil
}

func (s *Scheduler) cancelLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.target = time.Time{}
}

func (s *Scheduler) poll(stop chan struct{}, target time.Time) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if callback, fired := s.tryFire(stop, target); fired {
				if callback != nil {
					callback(target)
				}
				return
			}
		}
	}
}

// tryFire checks the clock against the target and, if reached, consumes the
// pending trigger and returns the callback to invoke. The callback runs
// outside the lock so it may re-arm the scheduler.
func (s *Scheduler) tryFire(stop chan struct{}, target time.Time) (func(time.Time), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A concurrent Start or Cancel superseded this poller.
	if s.stop != stop {
		return nil, true
	}
	if s.now().Before(target) {
		return nil, false
	}

	s.stop = nil
	s.target = time.Time{}
	return s.callback, true
}
