package frame

import "errors"

// Sentinel errors for the frame loop.
var (
	ErrLoopRunning = errors.New("frame loop already running")
)
