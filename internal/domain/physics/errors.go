package physics

import "errors"

// Sentinel errors for floating object configuration.
var (
	ErrInvalidDepth = errors.New("depth must be greater than zero")
	ErrDuplicateID  = errors.New("duplicate floating object id")
)
