// Package widget mounts the interaction engine on a frame loop. Every
// widget registers its subscriptions, timers and scroll observations
// through one teardown, so Unmount leaves nothing scheduled behind.
package widget

import (
	"sync"

	"github.com/h2hmarketing/site/internal/domain/physics"
	"github.com/h2hmarketing/site/internal/domain/pointer"
	"github.com/h2hmarketing/site/internal/domain/scroll"
	"github.com/h2hmarketing/site/internal/frame"
)

// Page is the environment widgets share: viewport, scroll position, the
// pointer store and the scroll tracker. Host input goes in through Page;
// widgets only read from it.
type Page struct {
	Pointer *pointer.Sampler
	Scroll  *scroll.Tracker

	mu           sync.RWMutex
	viewport     physics.Viewport
	touch        bool
	scrollY      float64
	scrollHeight float64

	lifecycle
}

// NewPage creates a page for a viewport.
func NewPage(width, height float64, touch bool) *Page {
	p := &Page{
		Pointer: pointer.NewSampler(),
		Scroll:  scroll.NewTracker(scroll.DefaultThrottle),
	}
	p.Resize(width, height, touch)
	return p
}

// Mount starts ticking the scroll tracker once per frame.
func (p *Page) Mount(s frame.Scheduler) error {
	td, err := p.begin()
	if err != nil {
		return err
	}
	td.Track(s, s.Subscribe(func(f frame.Frame) {
		p.Scroll.Tick(f.Now, p.Viewport().Height)
	}))
	return nil
}

// Unmount stops ticking. Observations belong to the widgets that made them.
func (p *Page) Unmount() { p.end() }

// Resize updates the viewport and re-evaluates pointer capability.
func (p *Page) Resize(width, height float64, touch bool) bool {
	p.mu.Lock()
	p.viewport = physics.Viewport{Width: width, Height: height}
	p.touch = touch
	p.mu.Unlock()
	p.Scroll.OnScroll()
	return p.Pointer.SetCapability(pointer.Capability{ViewportWidth: width, Touch: touch})
}

// ScrollTo records a scroll event.
func (p *Page) ScrollTo(y, scrollHeight float64) {
	p.mu.Lock()
	p.scrollY, p.scrollHeight = y, scrollHeight
	p.mu.Unlock()
	p.Scroll.OnScroll()
}

// PointerMove forwards a pointer event to the sampler.
func (p *Page) PointerMove(x, y, tMs float64) bool {
	return p.Pointer.Offer(x, y, tMs)
}

// PointerLeave disables pointer effects until the pointer returns.
func (p *Page) PointerLeave() { p.Pointer.Leave() }

// Viewport returns the current viewport.
func (p *Page) Viewport() physics.Viewport {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.viewport
}

// ReadingProgress is the page-level scroll progress.
func (p *Page) ReadingProgress() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return scroll.PageProgress(p.scrollY, p.scrollHeight, p.viewport.Height)
}

// Element returns a BoundsFunc for a block at document offset top with
// the given height.
func (p *Page) Element(top, height float64) scroll.BoundsFunc {
	return func() scroll.Bounds {
		p.mu.RLock()
		defer p.mu.RUnlock()
		t := top - p.scrollY
		return scroll.Bounds{Top: t, Bottom: t + height}
	}
}

// lifecycle is the mount state shared by every widget.
type lifecycle struct {
	lmu      sync.Mutex
	mounted  bool
	teardown *frame.Teardown
}

func (l *lifecycle) begin() (*frame.Teardown, error) {
	l.lmu.Lock()
	defer l.lmu.Unlock()
	if l.mounted {
		return nil, ErrAlreadyMounted
	}
	l.mounted = true
	l.teardown = &frame.Teardown{}
	return l.teardown, nil
}

// end runs the teardown. Calling it again, or before mount, is a no-op.
func (l *lifecycle) end() {
	l.lmu.Lock()
	td := l.teardown
	l.mounted = false
	l.teardown = nil
	l.lmu.Unlock()
	if td != nil {
		td.Run()
	}
}

// Mounted reports whether the widget is mounted.
func (l *lifecycle) Mounted() bool {
	l.lmu.Lock()
	defer l.lmu.Unlock()
	return l.mounted
}
