package widget

import (
	"sync"

	"github.com/h2hmarketing/site/internal/domain/chat"
	"github.com/h2hmarketing/site/internal/frame"
)

// ChatWidget is the floating chat window. Each mount is a fresh session.
type ChatWidget struct {
	responder *chat.Responder
	opts      []chat.SessionOption

	mu      sync.RWMutex
	session *chat.Session

	lifecycle
}

// NewChatWidget creates a chat widget answering with r.
func NewChatWidget(r *chat.Responder, opts ...chat.SessionOption) *ChatWidget {
	return &ChatWidget{responder: r, opts: opts}
}

// Mount opens a session; the welcome follows shortly.
func (w *ChatWidget) Mount(s frame.Scheduler) error {
	td, err := w.begin()
	if err != nil {
		return err
	}
	sess := chat.NewSession(w.responder, s, w.opts...)
	sess.Open()
	w.mu.Lock()
	w.session = sess
	w.mu.Unlock()
	td.Add(sess.Close)
	return nil
}

// Unmount closes the session and drops pending replies.
func (w *ChatWidget) Unmount() { w.end() }

// Send submits a visitor message.
func (w *ChatWidget) Send(text string) error {
	w.mu.RLock()
	sess := w.session
	w.mu.RUnlock()
	if sess == nil || !w.Mounted() {
		return ErrNotMounted
	}
	_, err := sess.Submit(text)
	return err
}

// Messages returns the transcript of the current session.
func (w *ChatWidget) Messages() []chat.Message {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.session == nil {
		return nil
	}
	return w.session.Messages()
}

// Typing reports whether a reply is pending.
func (w *ChatWidget) Typing() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.session != nil && w.session.Typing()
}
