package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for the event space.
var (
	// ErrInvalidArgument is returned when an operation receives a malformed
	// value: an empty event name, a nil space, a wildcard path, or a delegate
	// path outside its capture path.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotReady is returned when an event is triggered or broadcast without
	// a resolvable target path.
	ErrNotReady = errors.New("event is not ready to be triggered")

	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func checkEventName(eventName string) error {
	if eventName == "" {
		return invalidArgument("event name cannot be empty")
	}
	return nil
}

func checkHandler(h Handler) error {
	if h == nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, ErrNilHandler)
	}
	return nil
}
