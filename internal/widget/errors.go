package widget

import "errors"

// Sentinel errors for widget lifecycles.
var (
	ErrAlreadyMounted = errors.New("widget already mounted")
	ErrNotMounted     = errors.New("widget not mounted")
	ErrSubmitInFlight = errors.New("submit already in flight")
)
