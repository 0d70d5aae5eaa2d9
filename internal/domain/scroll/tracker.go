package scroll

import (
	"sync"
	"time"
)

const (
	DefaultThrottle  = 50 * time.Millisecond
	DefaultThreshold = 0.8
)

// Mode selects how an observation reports.
type Mode int

const (
	// TriggerOnce latches visible the first time the element top crosses
	// threshold*viewportHeight and never reverts.
	TriggerOnce Mode = iota
	// Scrub reports continuous progress on every recomputation.
	Scrub
)

func (m Mode) String() string {
	switch m {
	case TriggerOnce:
		return "trigger_once"
	case Scrub:
		return "scrub"
	}
	return "unknown"
}

// Handle identifies an observation.
type Handle uint64

// BoundsFunc reads an element's current box.
type BoundsFunc func() Bounds

// State is the latest computed value of an observation.
type State struct {
	ID       string  `json:"id"`
	Mode     Mode    `json:"mode"`
	Progress float64 `json:"progress"`
	Visible  bool    `json:"visible"`
}

// Listener receives state changes.
type Listener func(State)

type observation struct {
	state     State
	threshold float64
	bounds    BoundsFunc
	listener  Listener
}

// Tracker recomputes observations at most once per throttle window. Every
// recomputation starts from the current bounds; nothing accumulates.
type Tracker struct {
	mu        sync.Mutex
	throttle  time.Duration
	next      Handle
	obs       map[Handle]*observation
	order     []Handle
	dirty     bool
	last      time.Time
	computed  bool
	viewportH float64
	closed    bool
}

// NewTracker creates a tracker. A non-positive throttle uses the default.
func NewTracker(throttle time.Duration) *Tracker {
	if throttle <= 0 {
		throttle = DefaultThrottle
	}
	return &Tracker{throttle: throttle, obs: make(map[Handle]*observation)}
}

// Observe starts tracking an element. Thresholds outside (0,1] use the default.
// It returns 0 after Close.
func (t *Tracker) Observe(id string, mode Mode, threshold float64, bounds BoundsFunc, fn Listener) Handle {
	if bounds == nil {
		return 0
	}
	if !(threshold > 0 && threshold <= 1) {
		threshold = DefaultThreshold
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0
	}
	t.next++
	h := t.next
	t.obs[h] = &observation{
		state:     State{ID: id, Mode: mode},
		threshold: threshold,
		bounds:    bounds,
		listener:  fn,
	}
	t.order = append(t.order, h)
	t.dirty = true
	return h
}

// Unobserve stops tracking. It reports whether the handle was live.
func (t *Tracker) Unobserve(h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.obs[h]; !ok {
		return false
	}
	delete(t.obs, h)
	for i, o := range t.order {
		if o == h {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// OnScroll records a scroll event. It never recomputes synchronously.
func (t *Tracker) OnScroll() {
	t.mu.Lock()
	t.dirty = true
	t.mu.Unlock()
}

// Tick recomputes pending work if the throttle window has passed and
// returns the number of listener notifications delivered.
func (t *Tracker) Tick(now time.Time, viewportH float64) int {
	t.mu.Lock()
	if viewportH != t.viewportH {
		t.viewportH = viewportH
		t.dirty = true
	}
	if t.closed || !t.dirty || (t.computed && now.Sub(t.last) < t.throttle) {
		t.mu.Unlock()
		return 0
	}
	t.dirty = false
	t.computed = true
	t.last = now

	type note struct {
		fn Listener
		s  State
	}
	var notes []note
	for _, h := range t.order {
		o := t.obs[h]
		b := o.bounds()
		prev := o.state
		switch o.state.Mode {
		case TriggerOnce:
			if !o.state.Visible && finite(b.Top) && viewportH > 0 && b.Top <= o.threshold*viewportH {
				o.state.Visible = true
				o.state.Progress = 1
			}
		default:
			o.state.Progress = Progress(b, viewportH)
			o.state.Visible = o.state.Progress > 0 && o.state.Progress < 1
		}
		if o.state != prev && o.listener != nil {
			notes = append(notes, note{o.listener, o.state})
		}
	}
	t.mu.Unlock()

	for _, n := range notes {
		n.fn(n.s)
	}
	return len(notes)
}

// State returns the latest state of an observation.
func (t *Tracker) State(h Handle) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	o, ok := t.obs[h]
	if !ok {
		return State{}, false
	}
	return o.state, true
}

// Len returns the number of live observations.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.obs)
}

// Close drops every observation; later Observe calls are ignored.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.obs = make(map[Handle]*observation)
	t.order = nil
}
