package widget

import (
	"sync"

	"github.com/h2hmarketing/site/internal/domain/pointer"
	"github.com/h2hmarketing/site/internal/frame"
)

// CursorTrail draws the fading dots that follow the pointer on desktop.
type CursorTrail struct {
	page *Page

	mu      sync.RWMutex
	trail   *pointer.Trail
	visible bool

	lifecycle
}

// NewCursorTrail creates a trail of the default length.
func NewCursorTrail(page *Page) *CursorTrail {
	return &CursorTrail{
		page:  page,
		trail: pointer.NewTrail(pointer.DefaultTrailLength, pointer.DefaultTrailThrottleMs),
	}
}

// Mount starts sampling. On touch or narrow viewports nothing is scheduled.
func (c *CursorTrail) Mount(s frame.Scheduler) error {
	td, err := c.begin()
	if err != nil {
		return err
	}
	if _, enabled := c.page.Pointer.Latest(); !enabled {
		return nil
	}
	td.Track(s, s.Subscribe(c.frame))
	td.Add(func() {
		c.mu.Lock()
		c.trail.Reset()
		c.visible = false
		c.mu.Unlock()
	})
	return nil
}

// Unmount stops sampling and clears the trail.
func (c *CursorTrail) Unmount() { c.end() }

func (c *CursorTrail) frame(f frame.Frame) {
	sample, enabled := c.page.Pointer.Latest()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = enabled && c.page.Pointer.Seen()
	if !c.visible {
		return
	}
	c.trail.Update(sample, float64(f.Elapsed.Milliseconds()))
}

// Points returns the trail, newest first, or nothing while hidden.
func (c *CursorTrail) Points() []pointer.TrailPoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.visible {
		return nil
	}
	return c.trail.Points()
}
