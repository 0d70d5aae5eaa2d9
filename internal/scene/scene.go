// Package scene renders one frame of the site's motion state from a
// client snapshot: hero transforms, the cursor trail, page and section
// scroll progress, counter values and magnetic offsets.
package scene

import (
	"fmt"
	"math"
	"time"

	"github.com/h2hmarketing/site/internal/domain/counter"
	"github.com/h2hmarketing/site/internal/domain/physics"
	"github.com/h2hmarketing/site/internal/domain/pointer"
	"github.com/h2hmarketing/site/internal/domain/scroll"
	"github.com/h2hmarketing/site/internal/widget"
	"github.com/h2hmarketing/site/pkg/metrics"
)

// MaxItems bounds every list in a request.
const MaxItems = 64

// Request is a client snapshot.
type Request struct {
	Viewport physics.Viewport `json:"viewport" jsonschema:"required"`
	Touch    bool             `json:"touch,omitempty"`
	// Pointer is the latest pointer position; absent when it left the page.
	Pointer *pointer.Sample `json:"pointer,omitempty"`
	// TimeMs is the time since the hero mounted.
	TimeMs float64 `json:"time_ms" jsonschema:"minimum=0"`
	// Trail holds recent raw pointer samples, oldest first.
	Trail    []pointer.Sample `json:"trail,omitempty"`
	Scroll   Scroll           `json:"scroll"`
	Sections []Section        `json:"sections,omitempty"`
	Counters []Counter        `json:"counters,omitempty"`
	Magnets  []Magnet         `json:"magnets,omitempty"`
}

// Scroll is the document scroll position.
type Scroll struct {
	Y      float64 `json:"y"`
	Height float64 `json:"height"`
}

// Section is an observed element in document coordinates.
type Section struct {
	ID        string  `json:"id" jsonschema:"required"`
	Top       float64 `json:"top"`
	Height    float64 `json:"height"`
	Mode      string  `json:"mode,omitempty" jsonschema:"enum=trigger_once,enum=scrub"`
	Threshold float64 `json:"threshold,omitempty"`
}

// Counter is a running stat counter.
type Counter struct {
	ID         string  `json:"id" jsonschema:"required"`
	Start      int     `json:"start,omitempty"`
	Target     int     `json:"target"`
	Prefix     string  `json:"prefix,omitempty"`
	Suffix     string  `json:"suffix,omitempty"`
	DurationMs float64 `json:"duration_ms,omitempty"`
	ElapsedMs  float64 `json:"elapsed_ms"`
}

// Magnet is an element center that attracts toward the pointer.
type Magnet struct {
	ID string  `json:"id" jsonschema:"required"`
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`
}

// SectionState is the computed scroll state of a section.
type SectionState struct {
	ID       string  `json:"id"`
	Progress float64 `json:"progress"`
	Visible  bool    `json:"visible"`
}

// CounterState is a counter sample.
type CounterState struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
	Text  string `json:"text"`
	Done  bool   `json:"done"`
}

// MagnetState is the offset applied to a magnetic element.
type MagnetState struct {
	ID string  `json:"id"`
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Response is one rendered frame.
type Response struct {
	PointerEnabled bool                 `json:"pointer_enabled"`
	Objects        []widget.Transform   `json:"objects"`
	Trail          []pointer.TrailPoint `json:"trail"`
	PageProgress   float64              `json:"page_progress"`
	Sections       []SectionState       `json:"sections"`
	Counters       []CounterState       `json:"counters"`
	Magnets        []MagnetState        `json:"magnets"`
}

// Renderer is stateless apart from its configuration and safe for
// concurrent use.
type Renderer struct {
	objects   []physics.FloatingObject
	composer  *physics.Composer
	magnet    physics.Magnet
	timeScale float64
	threshold float64
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithObjects replaces the hero layout.
func WithObjects(objs []physics.FloatingObject) Option {
	return func(r *Renderer) {
		r.objects = append([]physics.FloatingObject(nil), objs...)
	}
}

// WithParams replaces the composition tunables.
func WithParams(p physics.Params) Option {
	return func(r *Renderer) {
		r.composer = physics.NewComposer(p)
	}
}

// WithMagnet replaces the magnetic text configuration.
func WithMagnet(m physics.Magnet) Option {
	return func(r *Renderer) {
		r.magnet = m
	}
}

// WithTimeScale sets float-clock units per second.
func WithTimeScale(s float64) Option {
	return func(r *Renderer) {
		if s > 0 {
			r.timeScale = s
		}
	}
}

// NewRenderer validates the hero layout once.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		objects:   physics.HeroObjects(),
		composer:  physics.NewComposer(physics.DefaultParams()),
		magnet:    physics.DefaultMagnet(),
		timeScale: widget.DefaultTimeScale,
		threshold: pointer.DefaultWidthThreshold,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := physics.ValidateAll(r.objects); err != nil {
		return nil, err
	}
	return r, nil
}

// Render computes one frame for req.
func (r *Renderer) Render(req Request) (Response, error) {
	if err := check(req); err != nil {
		return Response{}, err
	}
	vp := req.Viewport
	capable := pointer.Capability{ViewportWidth: vp.Width, Touch: req.Touch}.PointerEnabled(r.threshold)

	var sample pointer.Sample
	enabled := capable && req.Pointer != nil
	if enabled {
		sample = *req.Pointer
	}

	out := Response{
		PointerEnabled: capable,
		Objects:        r.transforms(sample, enabled, vp, req.TimeMs),
		Trail:          []pointer.TrailPoint{},
		PageProgress:   scroll.PageProgress(req.Scroll.Y, req.Scroll.Height, vp.Height),
		Sections:       make([]SectionState, 0, len(req.Sections)),
		Counters:       make([]CounterState, 0, len(req.Counters)),
		Magnets:        make([]MagnetState, 0, len(req.Magnets)),
	}

	if enabled {
		trail := pointer.NewTrail(pointer.DefaultTrailLength, pointer.DefaultTrailThrottleMs)
		for _, s := range req.Trail {
			trail.Update(s, s.TimestampMs)
		}
		out.Trail = trail.Points()
	}

	for _, s := range req.Sections {
		st, err := r.section(s, req.Scroll.Y, vp.Height)
		if err != nil {
			return Response{}, err
		}
		out.Sections = append(out.Sections, st)
	}

	for _, c := range req.Counters {
		a := counter.Animator{
			Start:    c.Start,
			Target:   c.Target,
			Duration: msDuration(c.DurationMs),
			Prefix:   c.Prefix,
			Suffix:   c.Suffix,
		}
		if a.Duration <= 0 {
			a.Duration = counter.DefaultDuration
		}
		elapsed := msDuration(c.ElapsedMs)
		out.Counters = append(out.Counters, CounterState{
			ID:    c.ID,
			Value: a.Value(elapsed),
			Text:  a.Format(elapsed),
			Done:  a.Done(elapsed),
		})
	}

	for _, m := range req.Magnets {
		var off physics.Offset
		if enabled {
			off = r.magnet.Offset(m.CX, m.CY, sample.X, sample.Y)
		}
		out.Magnets = append(out.Magnets, MagnetState{ID: m.ID, DX: off.DX, DY: off.DY})
	}

	metrics.RecordSceneFrame()
	return out, nil
}

func (r *Renderer) transforms(sample pointer.Sample, enabled bool, vp physics.Viewport, timeMs float64) []widget.Transform {
	t := finiteOr(timeMs, 0) / 1000 * r.timeScale
	out := make([]widget.Transform, len(r.objects))
	for i, o := range r.objects {
		o = o.Anchor(vp.Width, vp.Height)
		off := r.composer.Compose(o, sample, enabled, vp, t)
		out[i] = widget.Transform{
			ID:          o.ID,
			X:           o.RestX + off.DX,
			Y:           o.RestY + off.DY,
			RotationDeg: off.RotationDeg,
			SizePx:      o.SizePx,
		}
	}
	return out
}

func (r *Renderer) section(s Section, scrollY, vh float64) (SectionState, error) {
	b := scroll.Bounds{Top: s.Top - finiteOr(scrollY, 0), Bottom: s.Top - finiteOr(scrollY, 0) + s.Height}
	p := scroll.Progress(b, vh)
	st := SectionState{ID: s.ID, Progress: p}

	switch s.Mode {
	case "", scroll.TriggerOnce.String():
		thr := s.Threshold
		if !(thr > 0 && thr <= 1) {
			thr = scroll.DefaultThreshold
		}
		st.Visible = b.Top <= thr*vh
	case scroll.Scrub.String():
		st.Visible = p > 0 && p < 1
	default:
		return SectionState{}, fmt.Errorf("%w: %q", ErrUnknownMode, s.Mode)
	}
	return st, nil
}

func check(req Request) error {
	vp := req.Viewport
	if !(vp.Width > 0) || !(vp.Height > 0) || math.IsInf(vp.Width, 0) || math.IsInf(vp.Height, 0) {
		return ErrInvalidViewport
	}
	for _, n := range []int{len(req.Trail), len(req.Sections), len(req.Counters), len(req.Magnets)} {
		if n > MaxItems {
			return fmt.Errorf("%w: %d > %d", ErrTooManyItems, n, MaxItems)
		}
	}
	return nil
}

// maxMs is the largest whole millisecond count a time.Duration holds.
const maxMs = float64(math.MaxInt64 / int64(time.Millisecond))

// msDuration converts milliseconds to a Duration, saturating instead of
// overflowing. Non-finite input is zero.
func msDuration(ms float64) time.Duration {
	ms = finiteOr(ms, 0)
	switch {
	case ms >= maxMs:
		return time.Duration(math.MaxInt64)
	case ms <= -maxMs:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(ms * float64(time.Millisecond))
}

func finiteOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}
