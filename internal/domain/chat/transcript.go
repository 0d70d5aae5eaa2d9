package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Intent    Intent    `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is an append-only ordered message list.
type Transcript struct {
	mu   sync.RWMutex
	msgs []Message
}

// Append adds a message and returns it with its assigned id.
func (t *Transcript) Append(role Role, content string, intent Intent, at time.Time) Message {
	m := Message{ID: uuid.NewString(), Role: role, Content: content, Intent: intent, Timestamp: at}
	t.mu.Lock()
	t.msgs = append(t.msgs, m)
	t.mu.Unlock()
	return m
}

// Messages returns a copy in append order.
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Message(nil), t.msgs...)
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.msgs)
}
