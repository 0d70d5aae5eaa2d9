package chat

import "errors"

// Sentinel errors for chat sessions.
var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrBusy            = errors.New("assistant reply pending")
	ErrClosed          = errors.New("chat session closed")
	ErrSessionNotFound = errors.New("chat session not found")
	ErrTooManySessions = errors.New("too many chat sessions")
)
