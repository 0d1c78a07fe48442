package path

import (
	"errors"
	"strconv"
)

// ErrInvalidPath is returned when a path or query is malformed, or when an
// operation is not defined for the given path (such as shrinking the root).
var ErrInvalidPath = errors.New("invalid path")

// Error describes why a particular input was rejected.
type Error struct {
	// Input is the offending input in canonical or raw form.
	Input string

	// Reason is a short human-readable explanation.
	Reason string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return "invalid path " + strconv.Quote(e.Input) + ": " + e.Reason
}

// Is allows errors.Is to match Error with ErrInvalidPath.
func (e *Error) Is(target error) bool {
	return target == ErrInvalidPath
}

func invalid(input, reason string) error {
	return &Error{Input: input, Reason: reason}
}
