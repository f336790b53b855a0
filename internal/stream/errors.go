package stream

import "errors"

// Validation failures are rejected synchronously, before a session is created.
// Once a session is running the only exits are disconnect and deadline, neither
// of which is an error.
var (
	ErrMissingChannel = errors.New("channel key is required")
	ErrInvalidCursor  = errors.New("invalid page token")
	ErrBadFilter      = errors.New("invalid filter expression")
)
