package scene

import "errors"

var (
	ErrInvalidViewport = errors.New("viewport must have positive finite width and height")
	ErrTooManyItems    = errors.New("too many items in scene request")
	ErrUnknownMode     = errors.New("unknown reveal mode")
)
