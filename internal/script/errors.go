package script

import "errors"

// Errors for script operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotFunction is returned when a compiled chunk does not yield a function.
	ErrNotFunction = errors.New("lua chunk did not return a function")

	// ErrTimeout is returned when a call exceeds the state's timeout.
	ErrTimeout = errors.New("lua execution timeout")
)
