package widget

import (
	"sync"

	"github.com/h2hmarketing/site/internal/domain/scroll"
	"github.com/h2hmarketing/site/internal/frame"
)

// ScrollReveal tracks one section, either fading in once or scrubbing.
type ScrollReveal struct {
	page      *Page
	id        string
	mode      scroll.Mode
	threshold float64
	top       float64
	height    float64

	mu    sync.RWMutex
	state scroll.State

	lifecycle
}

// NewScrollReveal creates a reveal for a block at document offset top.
func NewScrollReveal(page *Page, id string, mode scroll.Mode, top, height float64) *ScrollReveal {
	return &ScrollReveal{
		page:      page,
		id:        id,
		mode:      mode,
		threshold: scroll.DefaultThreshold,
		top:       top,
		height:    height,
		state:     scroll.State{ID: id, Mode: mode},
	}
}

// Mount starts observing. The frame scheduler is unused because the
// page's tracker drives recomputation.
func (r *ScrollReveal) Mount(_ frame.Scheduler) error {
	td, err := r.begin()
	if err != nil {
		return err
	}
	h := r.page.Scroll.Observe(r.id, r.mode, r.threshold, r.page.Element(r.top, r.height), func(s scroll.State) {
		r.mu.Lock()
		r.state = s
		r.mu.Unlock()
	})
	td.Add(func() { r.page.Scroll.Unobserve(h) })
	return nil
}

// Unmount stops observing.
func (r *ScrollReveal) Unmount() { r.end() }

// State returns the latest reveal state.
func (r *ScrollReveal) State() scroll.State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}
