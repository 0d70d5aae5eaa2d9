package chat

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/h2hmarketing/site/internal/frame"
)

const (
	DefaultTypingMin    = 1000 * time.Millisecond
	DefaultTypingMax    = 2000 * time.Millisecond
	DefaultWelcomeDelay = 500 * time.Millisecond
)

// DelayFunc picks the simulated typing delay for one reply.
type DelayFunc func() time.Duration

// UniformDelay returns a DelayFunc uniform in [lo, hi].
func UniformDelay(lo, hi time.Duration) DelayFunc {
	if hi < lo {
		lo, hi = hi, lo
	}
	return func() time.Duration {
		if hi == lo {
			return lo
		}
		return lo + rand.N(hi-lo+1)
	}
}

// Session is one visitor's conversation. Replies are appended by loop
// timers, so the assistant answer to message N always lands before
// message N+1 is accepted.
type Session struct {
	id        string
	responder *Responder
	sched     frame.Scheduler
	delay     DelayFunc
	onReply   func(Reply)

	transcript Transcript

	mu         sync.Mutex
	welcome    frame.Handle // pending welcome timer
	reply      frame.Handle // pending reply timer
	typing     bool
	opened     bool
	closed     bool
	lastActive time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDelay sets the typing delay source.
func WithDelay(d DelayFunc) SessionOption {
	return func(s *Session) {
		if d != nil {
			s.delay = d
		}
	}
}

// WithReplyHook is called on the loop after each assistant message.
func WithReplyHook(fn func(Reply)) SessionOption {
	return func(s *Session) {
		s.onReply = fn
	}
}

// NewSession creates a closed-over conversation scheduled on sched.
func NewSession(r *Responder, sched frame.Scheduler, opts ...SessionOption) *Session {
	s := &Session{
		id:         uuid.NewString(),
		responder:  r,
		sched:      sched,
		delay:      UniformDelay(DefaultTypingMin, DefaultTypingMax),
		lastActive: sched.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Open schedules the welcome message when the transcript is empty at the
// time of opening. Repeated calls do nothing.
func (s *Session) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened || s.closed {
		return
	}
	s.opened = true
	s.lastActive = s.sched.Now()
	if s.transcript.Len() > 0 {
		return
	}
	s.welcome = s.sched.After(DefaultWelcomeDelay, func() {
		s.deliver(s.responder.Welcome(), false)
	})
}

// Submit appends the user message and schedules the assistant reply.
func (s *Session) Submit(text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Message{}, ErrClosed
	}
	if s.typing {
		return Message{}, ErrBusy
	}
	now := s.sched.Now()
	s.lastActive = now
	m := s.transcript.Append(RoleUser, text, "", now)
	s.typing = true

	reply := s.responder.Respond(text)
	s.reply = s.sched.After(s.delay(), func() {
		s.deliver(reply, true)
	})
	return m, nil
}

// deliver appends an assistant message. For a reply, typing clears in the
// same critical section so no user message can land ahead of it.
func (s *Session) deliver(r Reply, isReply bool) {
	s.mu.Lock()
	if isReply {
		s.reply = 0
		s.typing = false
	} else {
		s.welcome = 0
	}
	if s.closed {
		s.mu.Unlock()
		return
	}
	now := s.sched.Now()
	s.lastActive = now
	s.transcript.Append(RoleAssistant, r.Text, r.Intent, now)
	s.mu.Unlock()
	if s.onReply != nil {
		s.onReply(r)
	}
}

// Typing reports whether a reply is pending.
func (s *Session) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// Messages returns the transcript.
func (s *Session) Messages() []Message { return s.transcript.Messages() }

// LastActive is the time of the last message or open.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close cancels any pending reply or welcome. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.typing = false
	pending := []frame.Handle{s.welcome, s.reply}
	s.welcome, s.reply = 0, 0
	s.mu.Unlock()
	for _, h := range pending {
		if h != 0 {
			s.sched.Cancel(h)
		}
	}
}
