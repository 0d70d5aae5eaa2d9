// Package physics composes the per-frame transform of the hero's floating
// objects: a sinusoidal float, a linear-falloff repulsion away from the
// pointer and a depth-weighted parallax.
package physics

import (
	"fmt"
	"math"
)

// FloatingObject is static configuration for one hero object. Rest
// coordinates are derived from the percentage anchor by Anchor.
type FloatingObject struct {
	ID           string  `json:"id"`
	XPct         float64 `json:"x_pct"`
	YPct         float64 `json:"y_pct"`
	RestX        float64 `json:"rest_x"`
	RestY        float64 `json:"rest_y"`
	Depth        float64 `json:"depth"`
	RotationBase float64 `json:"rotation_base"`
	SizePx       float64 `json:"size_px"`
	Phase        float64 `json:"phase"`
}

// Validate rejects objects whose depth would silently disable parallax.
func (o FloatingObject) Validate() error {
	if !(o.Depth > 0) || math.IsInf(o.Depth, 0) {
		return fmt.Errorf("%w: %s has depth %v", ErrInvalidDepth, o.ID, o.Depth)
	}
	return nil
}

// Anchor returns a copy with the rest position recomputed for a container.
func (o FloatingObject) Anchor(containerW, containerH float64) FloatingObject {
	o.RestX = o.XPct / 100 * orZero(containerW)
	o.RestY = o.YPct / 100 * orZero(containerH)
	return o
}

// ValidateAll checks every object and that ids are unique.
func ValidateAll(objs []FloatingObject) error {
	seen := make(map[string]struct{}, len(objs))
	for _, o := range objs {
		if err := o.Validate(); err != nil {
			return err
		}
		if _, ok := seen[o.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, o.ID)
		}
		seen[o.ID] = struct{}{}
	}
	return nil
}

// HeroObjects is the hero canvas icon layout. Phase is the icon index so
// the floats desynchronize.
func HeroObjects() []FloatingObject {
	objs := []FloatingObject{
		{ID: "x", XPct: 15, YPct: 20, SizePx: 140, Depth: 1.5},
		{ID: "instagram", XPct: 75, YPct: 25, SizePx: 150, Depth: 1.1},
		{ID: "linkedin", XPct: 28, YPct: 55, SizePx: 140, Depth: 0.9},
		{ID: "youtube", XPct: 70, YPct: 65, SizePx: 155, Depth: 1.0},
		{ID: "google", XPct: 50, YPct: 15, SizePx: 145, Depth: 1.3},
		{ID: "reddit", XPct: 85, YPct: 50, SizePx: 135, Depth: 1.2},
		{ID: "whatsapp", XPct: 10, YPct: 65, SizePx: 140, Depth: 0.95},
		{ID: "tiktok", XPct: 45, YPct: 75, SizePx: 130, Depth: 1.1},
	}
	for i := range objs {
		objs[i].Phase = float64(i)
	}
	return objs
}

func orZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
