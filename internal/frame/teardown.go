package frame

import "sync"

// Teardown collects cleanup functions for one component and runs them
// exactly once, newest first. Run is safe to call any number of times;
// functions added after Run execute immediately.
type Teardown struct {
	mu   sync.Mutex
	fns  []func()
	done bool
}

// Add registers fn.
func (t *Teardown) Add(fn func()) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		fn()
		return
	}
	t.fns = append(t.fns, fn)
	t.mu.Unlock()
}

// Track registers the cancellation of h on s.
func (t *Teardown) Track(s Scheduler, h Handle) Handle {
	t.Add(func() { s.Cancel(h) })
	return h
}

// Run executes every registered function once.
func (t *Teardown) Run() {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	t.done = true
	fns := t.fns
	t.fns = nil
	t.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// Done reports whether Run has been called.
func (t *Teardown) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
