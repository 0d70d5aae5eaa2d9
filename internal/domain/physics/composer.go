package physics

import (
	"math"

	"github.com/h2hmarketing/site/internal/domain/pointer"
)

// Params are the tunables of the composition.
type Params struct {
	Amplitude        float64 `json:"amplitude"`
	RepelRadius      float64 `json:"repel_radius"`
	RepelStrength    float64 `json:"repel_strength"`
	ParallaxStrength float64 `json:"parallax_strength"`
	// SpinDegPerUnit rotates objects by t*SpinDegPerUnit degrees (mod 360).
	SpinDegPerUnit float64 `json:"spin_deg_per_unit"`
	// PointerTilt adds PointerTilt*(px/viewportWidth - 0.5) degrees.
	PointerTilt float64 `json:"pointer_tilt"`
}

// DefaultParams matches the hero canvas.
func DefaultParams() Params {
	return Params{
		Amplitude:        15,
		RepelRadius:      200,
		RepelStrength:    80,
		ParallaxStrength: 30,
		SpinDegPerUnit:   20,
	}
}

// Viewport is the visible surface in CSS pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Offset is the composed transform of one object for one frame.
type Offset struct {
	DX          float64 `json:"dx"`
	DY          float64 `json:"dy"`
	RotationDeg float64 `json:"rotation_deg"`
}

// Add returns the component-wise sum.
func (o Offset) Add(p Offset) Offset {
	return Offset{DX: o.DX + p.DX, DY: o.DY + p.DY, RotationDeg: o.RotationDeg + p.RotationDeg}
}

// Composer computes transforms. The zero value is unusable; use NewComposer.
type Composer struct {
	p Params
}

// NewComposer creates a composer with the given tunables.
func NewComposer(p Params) *Composer {
	return &Composer{p: p}
}

// Params returns the composer tunables.
func (c *Composer) Params() Params { return c.p }

// RepulsionForce is the linear falloff: 1 at distance 0, 0 at and beyond
// radius, never negative.
func RepulsionForce(dist, radius float64) float64 {
	if !(radius > 0) || math.IsNaN(dist) || dist >= radius {
		return 0
	}
	if dist < 0 {
		dist = 0
	}
	return (radius - dist) / radius
}

// Float is the oscillation contribution at time t.
func (c *Composer) Float(o FloatingObject, t float64) Offset {
	t = orZero(t)
	return Offset{
		DX: math.Sin(t+o.Phase) * c.p.Amplitude * o.Depth,
		DY: math.Cos(t+o.Phase*1.3) * c.p.Amplitude * o.Depth,
	}
}

// Repulsion pushes the object away from the pointer. At zero distance the
// direction is undefined and the contribution is skipped.
func (c *Composer) Repulsion(o FloatingObject, px, py float64) Offset {
	dx := o.RestX - px
	dy := o.RestY - py
	dist := math.Hypot(dx, dy)
	if dist == 0 || math.IsNaN(dist) || math.IsInf(dist, 0) {
		return Offset{}
	}
	force := RepulsionForce(dist, c.p.RepelRadius)
	if force == 0 {
		return Offset{}
	}
	return Offset{
		DX: dx / dist * force * c.p.RepelStrength,
		DY: dy / dist * force * c.p.RepelStrength,
	}
}

// Parallax shifts the object by the pointer's offset from the viewport
// center, weighted by depth.
func (c *Composer) Parallax(o FloatingObject, px, py float64, vp Viewport) Offset {
	var out Offset
	if vp.Width > 0 {
		out.DX = (px/vp.Width - 0.5) * c.p.ParallaxStrength * o.Depth
	}
	if vp.Height > 0 {
		out.DY = (py/vp.Height - 0.5) * c.p.ParallaxStrength * o.Depth
	}
	return out
}

// Rotation is the base rotation plus the time spin and optional pointer tilt.
func (c *Composer) Rotation(o FloatingObject, px float64, enabled bool, vp Viewport, t float64) float64 {
	rot := o.RotationBase + math.Mod(orZero(t)*c.p.SpinDegPerUnit, 360)
	if enabled && c.p.PointerTilt != 0 && vp.Width > 0 {
		rot += c.p.PointerTilt * (px/vp.Width - 0.5)
	}
	return rot
}

// Compose sums float, repulsion and parallax. When pointer effects are
// disabled only the float and spin run. The result is always finite.
func (c *Composer) Compose(o FloatingObject, s pointer.Sample, enabled bool, vp Viewport, t float64) Offset {
	o.RestX, o.RestY = orZero(o.RestX), orZero(o.RestY)
	o.Depth, o.Phase = orZero(o.Depth), orZero(o.Phase)
	o.RotationBase = orZero(o.RotationBase)
	px, py := orZero(s.X), orZero(s.Y)
	vp.Width, vp.Height = orZero(vp.Width), orZero(vp.Height)

	out := c.Float(o, t)
	if enabled {
		out = out.Add(c.Repulsion(o, px, py)).Add(c.Parallax(o, px, py, vp))
	}
	out.RotationDeg = c.Rotation(o, px, enabled, vp, t)
	out.DX, out.DY, out.RotationDeg = orZero(out.DX), orZero(out.DY), orZero(out.RotationDeg)
	return out
}

// ComposeAll composes every object against the same pointer snapshot.
func (c *Composer) ComposeAll(objs []FloatingObject, src pointer.Source, vp Viewport, t float64) []Offset {
	s, enabled := src.Latest()
	out := make([]Offset, len(objs))
	for i, o := range objs {
		out[i] = c.Compose(o, s, enabled, vp, t)
	}
	return out
}
