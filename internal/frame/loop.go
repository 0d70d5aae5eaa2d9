// Package frame provides the ticker service that drives every animation and
// UI timer: per-frame subscriptions, one-shot timers, and a teardown helper
// that ties a component's registrations to a single idempotent cleanup.
//
// All callbacks run on one goroutine (Run) or inside Step, so consumers see
// the same interleaved single-threaded model a browser event loop gives them.
package frame

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is one frame at roughly 60Hz.
const DefaultInterval = 16 * time.Millisecond

// Handle identifies a subscription or timer. The zero Handle is never issued.
type Handle uint64

// Frame is passed to subscribers on every dispatch.
type Frame struct {
	Now     time.Time
	Elapsed time.Duration // since the subscription was created
	Delta   time.Duration // since the previous frame for this subscription
	Seq     uint64        // per-subscription frame counter, starting at 1
}

// FrameFunc is a per-frame callback.
type FrameFunc func(f Frame)

// Scheduler is the surface components schedule against.
type Scheduler interface {
	Subscribe(fn FrameFunc) Handle
	After(d time.Duration, fn func()) Handle
	Cancel(h Handle) bool
	Now() time.Time
}

// Stats is a snapshot of loop accounting.
type Stats struct {
	Scheduled uint64 // subscriptions plus timers ever registered
	Cancelled uint64 // successful Cancel calls
	Fired     uint64 // timers that ran
	Ticks     uint64 // Step calls that dispatched at least one callback
	Pending   int    // live subscriptions plus unfired timers
}

type subscription struct {
	fn    FrameFunc
	start time.Time
	last  time.Time
	seq   uint64
}

type timer struct {
	fn  func()
	due time.Time
}

// Loop is the frame scheduler.
type Loop struct {
	clock    Clock
	interval time.Duration

	mu     sync.Mutex
	next   Handle
	subs   map[Handle]*subscription
	order  []Handle
	timers map[Handle]*timer
	posted []func()
	stats  Stats

	wake    chan struct{}
	running atomic.Bool
	onTick  func(Stats)
}

// Option configures a Loop.
type Option func(*Loop)

// WithInterval sets the frame interval.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithClock injects the time source.
func WithClock(c Clock) Option {
	return func(l *Loop) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithTickHook installs a callback invoked after each dispatching Step.
func WithTickHook(fn func(Stats)) Option {
	return func(l *Loop) {
		l.onTick = fn
	}
}

// NewLoop creates an idle loop.
func NewLoop(opts ...Option) *Loop {
	l := &Loop{
		clock:    SystemClock{},
		interval: DefaultInterval,
		subs:     make(map[Handle]*subscription),
		timers:   make(map[Handle]*timer),
		wake:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the loop clock's current time.
func (l *Loop) Now() time.Time { return l.clock.Now() }

// Interval returns the frame interval.
func (l *Loop) Interval() time.Duration { return l.interval }

// Subscribe registers fn to run once per frame until cancelled.
func (l *Loop) Subscribe(fn FrameFunc) Handle {
	if fn == nil {
		return 0
	}
	now := l.clock.Now()
	l.mu.Lock()
	l.next++
	h := l.next
	l.subs[h] = &subscription{fn: fn, start: now}
	l.order = append(l.order, h)
	l.stats.Scheduled++
	l.mu.Unlock()
	l.signal()
	return h
}

// After schedules fn to run once, d from now. d <= 0 runs on the next step.
func (l *Loop) After(d time.Duration, fn func()) Handle {
	if fn == nil {
		return 0
	}
	due := l.clock.Now().Add(d)
	l.mu.Lock()
	l.next++
	h := l.next
	l.timers[h] = &timer{fn: fn, due: due}
	l.stats.Scheduled++
	l.mu.Unlock()
	l.signal()
	return h
}

// Post queues fn to run at the start of the next step. It is the way for
// other goroutines to touch loop-owned state.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
	l.signal()
}

// Cancel removes a subscription or pending timer. It reports whether
// anything was removed; cancelling twice or after a timer fired is a no-op.
func (l *Loop) Cancel(h Handle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.subs[h]; ok {
		delete(l.subs, h)
		for i, o := range l.order {
			if o == h {
				l.order = append(l.order[:i], l.order[i+1:]...)
				break
			}
		}
		l.stats.Cancelled++
		return true
	}
	if _, ok := l.timers[h]; ok {
		delete(l.timers, h)
		l.stats.Cancelled++
		return true
	}
	return false
}

// Stats returns a snapshot of the loop accounting.
func (l *Loop) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.stats
	s.Pending = len(l.subs) + len(l.timers)
	return s
}

// Step runs posted work, then due timers (in due order), then every subscriber once,
// using now as the frame time. It returns the number of callbacks run.
func (l *Loop) Step(now time.Time) int {
	l.mu.Lock()
	type dueTimer struct {
		h Handle
		t *timer
	}
	var due []dueTimer
	for h, t := range l.timers {
		if !t.due.After(now) {
			due = append(due, dueTimer{h, t})
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].t.due.Equal(due[j].t.due) {
			return due[i].h < due[j].h
		}
		return due[i].t.due.Before(due[j].t.due)
	})
	order := append([]Handle(nil), l.order...)
	posted := l.posted
	l.posted = nil
	l.mu.Unlock()

	ran := 0
	for _, fn := range posted {
		fn()
		ran++
	}
	// A due timer stays cancellable until it is dispatched, including by an
	// earlier callback in this step.
	for _, d := range due {
		l.mu.Lock()
		t, live := l.timers[d.h]
		live = live && t == d.t
		if live {
			delete(l.timers, d.h)
			l.stats.Fired++
		}
		l.mu.Unlock()
		if !live {
			continue
		}
		t.fn()
		ran++
	}
	for _, h := range order {
		l.mu.Lock()
		s, ok := l.subs[h]
		var f Frame
		if ok {
			s.seq++
			f = Frame{Now: now, Elapsed: now.Sub(s.start), Seq: s.seq}
			if !s.last.IsZero() {
				f.Delta = now.Sub(s.last)
			}
			s.last = now
		}
		l.mu.Unlock()
		if !ok {
			continue
		}
		s.fn(f)
		ran++
	}

	if ran > 0 {
		l.mu.Lock()
		l.stats.Ticks++
		snapshot := l.stats
		snapshot.Pending = len(l.subs) + len(l.timers)
		l.mu.Unlock()
		if l.onTick != nil {
			l.onTick(snapshot)
		}
	}
	return ran
}

// Advance moves a manual clock forward by d one interval at a time,
// stepping the loop after each move. Intended for tests and offline runs.
func (l *Loop) Advance(c *ManualClock, d time.Duration) {
	for d > 0 {
		step := l.interval
		if d < step {
			step = d
		}
		l.Step(c.Add(step))
		d -= step
	}
}

// Run drives the loop on the calling goroutine until ctx is done. It sleeps
// while nothing is scheduled and ticks at the frame interval otherwise.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer l.running.Store(false)

	t := time.NewTimer(l.interval)
	defer t.Stop()
	for {
		l.Step(l.clock.Now())

		if l.idle() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.wake:
				continue
			}
		}

		if !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
		t.Reset(l.interval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		case <-l.wake:
		}
	}
}

func (l *Loop) idle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs) == 0 && len(l.timers) == 0 && len(l.posted) == 0
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
