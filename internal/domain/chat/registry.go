package chat

import (
	"sync"
	"time"

	"github.com/h2hmarketing/site/internal/frame"
	"github.com/h2hmarketing/site/pkg/metrics"
)

const (
	DefaultMaxSessions   = 10_000
	DefaultIdleTTL       = 30 * time.Minute
	DefaultSweepInterval = time.Minute
)

// Registry owns the open sessions of a process. Sessions idle longer than
// the TTL are closed by a recurring sweep on the scheduler.
type Registry struct {
	responder *Responder
	sched     frame.Scheduler
	max       int
	ttl       time.Duration
	every     time.Duration
	opts      []SessionOption

	mu       sync.Mutex
	sessions map[string]*Session
	sweep    frame.Handle
	closed   bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithMaxSessions caps concurrently open sessions.
func WithMaxSessions(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.max = n
		}
	}
}

// WithIdleTTL sets how long a silent session survives.
func WithIdleTTL(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.ttl = d
		}
	}
}

// WithSweepInterval sets how often idle sessions are collected.
func WithSweepInterval(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.every = d
		}
	}
}

// WithSessionOptions applies opts to every created session.
func WithSessionOptions(opts ...SessionOption) RegistryOption {
	return func(r *Registry) {
		r.opts = append(r.opts, opts...)
	}
}

// NewRegistry creates a registry and arms its sweep timer.
func NewRegistry(resp *Responder, sched frame.Scheduler, opts ...RegistryOption) *Registry {
	r := &Registry{
		responder: resp,
		sched:     sched,
		max:       DefaultMaxSessions,
		ttl:       DefaultIdleTTL,
		every:     DefaultSweepInterval,
		sessions:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.mu.Lock()
	r.arm()
	r.mu.Unlock()
	return r
}

// arm schedules the next sweep. Callers hold mu.
func (r *Registry) arm() {
	if r.closed {
		return
	}
	r.sweep = r.sched.After(r.every, func() {
		r.Sweep()
		r.mu.Lock()
		r.arm()
		r.mu.Unlock()
	})
}

// Create opens a new session. Expired sessions are collected first when
// the registry is at capacity.
func (r *Registry) Create() (*Session, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	if len(r.sessions) >= r.max {
		r.mu.Unlock()
		r.Sweep()
		r.mu.Lock()
		if len(r.sessions) >= r.max {
			r.mu.Unlock()
			metrics.RecordChatRejected("capacity")
			return nil, ErrTooManySessions
		}
	}
	s := NewSession(r.responder, r.sched, r.opts...)
	r.sessions[s.ID()] = s
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.UpdateChatSessions(n)
	s.Open()
	return s, nil
}

// Get returns an open session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove closes and forgets a session.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	if !ok {
		return false
	}
	s.Close()
	metrics.UpdateChatSessions(n)
	return true
}

// Sweep closes sessions idle for longer than the TTL and returns how many
// were removed. Sessions with a pending reply are kept.
func (r *Registry) Sweep() int {
	cutoff := r.sched.Now().Add(-r.ttl)
	var expired []*Session

	r.mu.Lock()
	for id, s := range r.sessions {
		if !s.Typing() && s.LastActive().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		metrics.UpdateChatSessions(n)
	}
	return len(expired)
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops the sweep and closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.sched.Cancel(r.sweep)
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
	metrics.UpdateChatSessions(0)
}
