package pointer

// TrailPoint is a trail entry with its fade weight.
type TrailPoint struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Opacity float64 `json:"opacity"`
}

// Trail keeps the last N positions, newest first. It is owned by the frame
// loop and is not safe for concurrent use.
type Trail struct {
	n          int
	throttleMs float64
	points     []Sample
	lastMs     float64
	started    bool
}

// NewTrail creates a trail of length n updated at most once per throttleMs.
// Non-positive arguments fall back to the defaults.
func NewTrail(n int, throttleMs float64) *Trail {
	if n <= 0 {
		n = DefaultTrailLength
	}
	if throttleMs < 0 || !finite(throttleMs) {
		throttleMs = DefaultTrailThrottleMs
	}
	return &Trail{n: n, throttleMs: throttleMs, points: make([]Sample, 0, n)}
}

// Update pushes the current position if the throttle window has passed.
func (t *Trail) Update(s Sample, nowMs float64) bool {
	if !finite(nowMs) || !finite(s.X) || !finite(s.Y) {
		return false
	}
	if t.started && nowMs-t.lastMs < t.throttleMs {
		return false
	}
	t.started = true
	t.lastMs = nowMs

	if len(t.points) < t.n {
		t.points = append(t.points, Sample{})
	}
	copy(t.points[1:], t.points[:len(t.points)-1])
	t.points[0] = s
	return true
}

// Points returns a copy of the trail with opacity 1 - index/N.
func (t *Trail) Points() []TrailPoint {
	out := make([]TrailPoint, len(t.points))
	for i, p := range t.points {
		out[i] = TrailPoint{X: p.X, Y: p.Y, Opacity: 1 - float64(i)/float64(t.n)}
	}
	return out
}

// Len returns the number of held points.
func (t *Trail) Len() int { return len(t.points) }

// Cap returns the trail length N.
func (t *Trail) Cap() int { return t.n }

// Reset empties the trail.
func (t *Trail) Reset() {
	t.points = t.points[:0]
	t.started = false
}
