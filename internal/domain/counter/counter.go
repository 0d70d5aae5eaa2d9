// Package counter animates an integer display from a start value to a
// target with an ease-out cubic curve.
package counter

import (
	"math"
	"strconv"
	"sync"
	"time"
)

// DefaultDuration is the stat counter run time.
const DefaultDuration = 2 * time.Second

// Animator is the pure value function of a counter.
type Animator struct {
	Start    int
	Target   int
	Duration time.Duration
	Prefix   string
	Suffix   string
}

// EaseOutCubic maps progress in [0,1] to 1-(1-p)^3.
func EaseOutCubic(p float64) float64 {
	q := 1 - p
	return 1 - q*q*q
}

// Progress is min(elapsed/duration, 1), never negative. A non-positive
// duration completes immediately.
func (a Animator) Progress(elapsed time.Duration) float64 {
	if a.Duration <= 0 {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	return math.Min(float64(elapsed)/float64(a.Duration), 1)
}

// Value is the displayed integer at elapsed. It equals Target once the
// duration has passed and never leaves the [Start, Target] range.
func (a Animator) Value(elapsed time.Duration) int {
	p := a.Progress(elapsed)
	if p >= 1 {
		return a.Target
	}
	v := int(math.Floor(float64(a.Start) + float64(a.Target-a.Start)*EaseOutCubic(p)))
	lo, hi := a.Start, a.Target
	if lo > hi {
		lo, hi = hi, lo
	}
	return min(max(v, lo), hi)
}

// Format renders the value with prefix and suffix.
func (a Animator) Format(elapsed time.Duration) string {
	return a.Prefix + strconv.Itoa(a.Value(elapsed)) + a.Suffix
}

// Done reports whether the animation has completed.
func (a Animator) Done(elapsed time.Duration) bool {
	return a.Progress(elapsed) >= 1
}

// Run is one mount's playback of an Animator. Begin takes effect once;
// before it the counter shows Start.
type Run struct {
	mu      sync.Mutex
	anim    Animator
	started bool
	begin   time.Time
}

// NewRun creates an unstarted run.
func NewRun(a Animator) *Run {
	return &Run{anim: a}
}

// Begin starts the run at now. It reports false if the run had already begun.
func (r *Run) Begin(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return false
	}
	r.started = true
	r.begin = now
	return true
}

// Started reports whether Begin has been called.
func (r *Run) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// Sample returns the displayed value and text at now, and whether the run has finished.
func (r *Run) Sample(now time.Time) (int, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return r.anim.Start, r.anim.Prefix + strconv.Itoa(r.anim.Start) + r.anim.Suffix, false
	}
	el := now.Sub(r.begin)
	return r.anim.Value(el), r.anim.Format(el), r.anim.Done(el)
}

// Animator returns the run's configuration.
func (r *Run) Animator() Animator { return r.anim }
