package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	ErrFull   = errors.New("writer queue full")
	ErrClosed = errors.New("writer queue closed")
)
