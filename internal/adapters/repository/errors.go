package repository

import "errors"

// Sentinel kinds for record store errors.
var (
	// ErrUnavailable covers missing configuration and transport failures.
	ErrUnavailable = errors.New("record store unavailable")
	// ErrRejected is a request the backend refused.
	ErrRejected = errors.New("record store rejected request")
	ErrNotFound = errors.New("record not found")
	ErrNoRows   = errors.New("record store returned no rows")
)
