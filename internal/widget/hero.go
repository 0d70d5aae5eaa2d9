package widget

import (
	"sync"

	"github.com/h2hmarketing/site/internal/domain/physics"
	"github.com/h2hmarketing/site/internal/frame"
)

// DefaultTimeScale advances the float clock by 0.01 per 60Hz frame.
const DefaultTimeScale = 0.6

// Transform is the rendered state of one hero object.
type Transform struct {
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	RotationDeg float64 `json:"rotation_deg"`
	SizePx      float64 `json:"size_px"`
}

// HeroCanvas animates the floating hero objects.
type HeroCanvas struct {
	page      *Page
	composer  *physics.Composer
	timeScale float64
	smooth    bool

	mu         sync.RWMutex
	objects    []physics.FloatingObject
	smoothers  []*physics.Smoother
	container  physics.Viewport
	transforms []Transform

	lifecycle
}

// HeroOption configures a HeroCanvas.
type HeroOption func(*HeroCanvas)

// WithObjects replaces the hero layout.
func WithObjects(objs []physics.FloatingObject) HeroOption {
	return func(h *HeroCanvas) {
		h.objects = append([]physics.FloatingObject(nil), objs...)
	}
}

// WithParams replaces the composition tunables.
func WithParams(p physics.Params) HeroOption {
	return func(h *HeroCanvas) {
		h.composer = physics.NewComposer(p)
	}
}

// WithTimeScale sets how many float-clock units pass per second.
func WithTimeScale(s float64) HeroOption {
	return func(h *HeroCanvas) {
		if s > 0 {
			h.timeScale = s
		}
	}
}

// WithSmoothing eases each object toward its composed offset with a spring.
func WithSmoothing() HeroOption {
	return func(h *HeroCanvas) {
		h.smooth = true
	}
}

// NewHeroCanvas creates a canvas sized to the page viewport.
func NewHeroCanvas(page *Page, opts ...HeroOption) *HeroCanvas {
	h := &HeroCanvas{
		page:      page,
		composer:  physics.NewComposer(physics.DefaultParams()),
		timeScale: DefaultTimeScale,
		objects:   physics.HeroObjects(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Mount validates the layout, anchors it and starts the frame subscription.
func (h *HeroCanvas) Mount(s frame.Scheduler) error {
	if err := physics.ValidateAll(h.objects); err != nil {
		return err
	}
	td, err := h.begin()
	if err != nil {
		return err
	}
	vp := h.page.Viewport()
	h.Resize(vp.Width, vp.Height)
	td.Track(s, s.Subscribe(h.frame))
	return nil
}

// Unmount stops the animation.
func (h *HeroCanvas) Unmount() { h.end() }

// Resize re-anchors every object to a new container size.
func (h *HeroCanvas) Resize(width, height float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.container = physics.Viewport{Width: width, Height: height}
	for i := range h.objects {
		h.objects[i] = h.objects[i].Anchor(width, height)
	}
	if h.smooth && len(h.smoothers) != len(h.objects) {
		h.smoothers = make([]*physics.Smoother, len(h.objects))
		for i := range h.smoothers {
			h.smoothers[i] = physics.NewSmoother(60, 6, 1)
		}
	}
}

func (h *HeroCanvas) frame(f frame.Frame) {
	t := f.Elapsed.Seconds() * h.timeScale
	vp := h.page.Viewport()
	sample, enabled := h.page.Pointer.Latest()

	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Transform, len(h.objects))
	for i, o := range h.objects {
		off := h.composer.Compose(o, sample, enabled, vp, t)
		if h.smooth {
			off = h.smoothers[i].Follow(off)
		}
		out[i] = Transform{
			ID:          o.ID,
			X:           o.RestX + off.DX,
			Y:           o.RestY + off.DY,
			RotationDeg: off.RotationDeg,
			SizePx:      o.SizePx,
		}
	}
	h.transforms = out
}

// Transforms returns the last rendered frame.
func (h *HeroCanvas) Transforms() []Transform {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Transform(nil), h.transforms...)
}
