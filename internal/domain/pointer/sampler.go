// Package pointer turns raw pointer-move events into a throttled,
// last-value-wins sample stream and keeps the short trail the cursor effect
// draws. The Sampler is the single writer of the latest pointer position;
// every consumer reads value snapshots through Source.
package pointer

import (
	"math"
	"sync"
)

const (
	DefaultThrottleMs      = 16.0
	DefaultWidthThreshold  = 1024.0
	DefaultTrailLength     = 6
	DefaultTrailThrottleMs = 32.0
)

// Sample is one accepted pointer position.
type Sample struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	TimestampMs float64 `json:"timestamp_ms"`
}

// Capability describes the hosting surface.
type Capability struct {
	ViewportWidth float64 `json:"viewport_width"`
	Touch         bool    `json:"touch"`
}

// PointerEnabled reports whether hover-driven effects should run: never on
// touch surfaces or viewports narrower than threshold.
func (c Capability) PointerEnabled(threshold float64) bool {
	if c.Touch {
		return false
	}
	return c.ViewportWidth >= threshold
}

// Source is the read side of the shared pointer store.
type Source interface {
	// Latest returns the held sample and whether pointer effects are enabled.
	Latest() (Sample, bool)
}

// Sampler throttles raw events. Safe for one writer and many readers.
type Sampler struct {
	mu         sync.RWMutex
	throttleMs float64
	threshold  float64
	capable    bool
	inside     bool
	latest     Sample
	seen       bool
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithThrottle sets the minimum spacing between accepted samples.
func WithThrottle(ms float64) Option {
	return func(s *Sampler) {
		if ms >= 0 && !math.IsNaN(ms) {
			s.throttleMs = ms
		}
	}
}

// WithWidthThreshold sets the viewport width below which pointer effects are disabled.
func WithWidthThreshold(px float64) Option {
	return func(s *Sampler) {
		if px >= 0 && !math.IsNaN(px) {
			s.threshold = px
		}
	}
}

// NewSampler creates a sampler that assumes a hover-capable surface until
// SetCapability says otherwise.
func NewSampler(opts ...Option) *Sampler {
	s := &Sampler{
		throttleMs: DefaultThrottleMs,
		threshold:  DefaultWidthThreshold,
		capable:    true,
		inside:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Offer submits a raw event. It returns true when the sample was accepted.
// Events inside the throttle window, events older than the held sample,
// non-finite coordinates and events on disabled surfaces are dropped.
func (s *Sampler) Offer(x, y, tMs float64) bool {
	if !finite(x) || !finite(y) || !finite(tMs) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.capable {
		return false
	}
	if s.seen && tMs-s.latest.TimestampMs < s.throttleMs {
		return false
	}
	s.latest = Sample{X: x, Y: y, TimestampMs: tMs}
	s.seen = true
	s.inside = true
	return true
}

// Leave marks the pointer as having left the surface. The next accepted
// sample brings it back.
func (s *Sampler) Leave() {
	s.mu.Lock()
	s.inside = false
	s.mu.Unlock()
}

// SetCapability re-evaluates the hover capability, e.g. after a resize.
// It returns whether pointer effects are now enabled.
func (s *Sampler) SetCapability(c Capability) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capable = c.PointerEnabled(s.threshold)
	return s.capable && s.inside
}

// Latest implements Source. Before the first sample the position is (0,0).
func (s *Sampler) Latest() (Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.capable && s.inside
}

// Seen reports whether any sample has been accepted.
func (s *Sampler) Seen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seen
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
