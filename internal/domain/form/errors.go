package form

import "errors"

// ErrSubmitFailed is the one message a visitor sees when a valid contact
// could not be stored, whatever the backend reported.
var ErrSubmitFailed = errors.New("failed to send, please try again")
