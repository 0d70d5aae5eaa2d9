package form

import (
	"sync"
	"time"

	"github.com/h2hmarketing/site/internal/frame"
)

// DefaultDismiss is how long a submit outcome stays visible.
const DefaultDismiss = 5 * time.Second

// Status is the submit banner state.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// StatusTracker holds the banner state and reverts outcomes to idle after
// the dismiss delay. A new outcome replaces any pending revert.
type StatusTracker struct {
	sched   frame.Scheduler
	dismiss time.Duration

	mu       sync.Mutex
	status   Status
	revert   frame.Handle
	onRevert func()
}

// NewStatusTracker creates an idle tracker.
func NewStatusTracker(sched frame.Scheduler, dismiss time.Duration) *StatusTracker {
	if dismiss <= 0 {
		dismiss = DefaultDismiss
	}
	return &StatusTracker{sched: sched, dismiss: dismiss, status: StatusIdle}
}

// OnRevert registers a callback run on the loop when the banner clears.
func (s *StatusTracker) OnRevert(fn func()) {
	s.mu.Lock()
	s.onRevert = fn
	s.mu.Unlock()
}

// Status returns the current state.
func (s *StatusTracker) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Begin moves to submitting. It reports false if a submit is in flight.
func (s *StatusTracker) Begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusSubmitting {
		return false
	}
	s.cancelLocked()
	s.status = StatusSubmitting
	return true
}

// Succeed records a successful submit.
func (s *StatusTracker) Succeed() { s.settle(StatusSuccess) }

// Fail records a failed submit.
func (s *StatusTracker) Fail() { s.settle(StatusError) }

func (s *StatusTracker) settle(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.status = st
	var h frame.Handle
	h = s.sched.After(s.dismiss, func() {
		s.mu.Lock()
		if s.revert != h {
			s.mu.Unlock()
			return
		}
		s.status = StatusIdle
		s.revert = 0
		fn := s.onRevert
		s.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
	s.revert = h
}

// Stop cancels a pending revert without changing the state.
func (s *StatusTracker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *StatusTracker) cancelLocked() {
	if s.revert != 0 {
		s.sched.Cancel(s.revert)
		s.revert = 0
	}
}
