package physics

import "math"

const (
	DefaultMagnetRadius   = 200.0
	DefaultMagnetStrength = 20.0
)

// Magnet pulls an element toward the pointer when it is within Radius.
type Magnet struct {
	Radius   float64
	Strength float64
}

// DefaultMagnet is the magnetic text configuration.
func DefaultMagnet() Magnet {
	return Magnet{Radius: DefaultMagnetRadius, Strength: DefaultMagnetStrength}
}

// Offset returns the attraction of an element centered at (cx, cy).
func (m Magnet) Offset(cx, cy, px, py float64) Offset {
	dx := orZero(px) - orZero(cx)
	dy := orZero(py) - orZero(cy)
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return Offset{}
	}
	force := RepulsionForce(dist, m.Radius)
	if force == 0 {
		return Offset{}
	}
	return Offset{DX: dx / dist * force * m.Strength, DY: dy / dist * force * m.Strength}
}
