package physics

import "github.com/charmbracelet/harmonica"

// Smoother eases a displayed offset toward its target with a damped
// spring, standing in for the CSS transform transitions of the page.
type Smoother struct {
	spring harmonica.Spring
	x, vx  float64
	y, vy  float64
}

// NewSmoother creates a spring stepped fps times per second.
func NewSmoother(fps int, angularFrequency, damping float64) *Smoother {
	if fps <= 0 {
		fps = 60
	}
	return &Smoother{spring: harmonica.NewSpring(harmonica.FPS(fps), angularFrequency, damping)}
}

// Follow advances one step toward target and returns the displayed offset.
// Rotation is passed through unsmoothed.
func (s *Smoother) Follow(target Offset) Offset {
	s.x, s.vx = s.spring.Update(s.x, s.vx, orZero(target.DX))
	s.y, s.vy = s.spring.Update(s.y, s.vy, orZero(target.DY))
	return Offset{DX: s.x, DY: s.y, RotationDeg: target.RotationDeg}
}

// Reset snaps to the origin at rest.
func (s *Smoother) Reset() {
	s.x, s.vx, s.y, s.vy = 0, 0, 0, 0
}
