// Package scroll maps element positions to normalized scroll progress and
// tracks observed sections with trigger-once and scrub semantics.
package scroll

import "math"

// Bounds is an element's box in viewport coordinates.
type Bounds struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Height returns the element height, never negative.
func (b Bounds) Height() float64 {
	return math.Max(0, b.Bottom-b.Top)
}

// Progress is 0 while the element is still below the viewport, 1 once it
// has fully scrolled past the top, and linear across that traversal.
func Progress(b Bounds, viewportH float64) float64 {
	if !finite(b.Top) || !finite(b.Bottom) || !finite(viewportH) || viewportH <= 0 {
		return 0
	}
	span := viewportH + b.Height()
	return clamp01((viewportH - b.Top) / span)
}

// PageProgress is the page-level reading progress.
func PageProgress(scrollY, scrollHeight, clientHeight float64) float64 {
	total := scrollHeight - clientHeight
	if !finite(scrollY) || !finite(total) || total <= 0 {
		return 0
	}
	return clamp01(scrollY / total)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 1:
		return 1
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
