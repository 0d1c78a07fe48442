package scenario

import (
	"errors"
	"fmt"
)

// Sentinel errors for scenario handling.
var (
	// ErrUnknownFormat indicates a scenario file with an unsupported extension.
	ErrUnknownFormat = errors.New("unknown scenario format")

	// ErrInvalidScenario indicates a scenario that failed validation.
	ErrInvalidScenario = errors.New("invalid scenario")

	// ErrHandlerFailed is returned by subscriptions with the fail action.
	ErrHandlerFailed = errors.New("handler failed")

	// ErrExpectation indicates a step whose hits differ from its expectation.
	ErrExpectation = errors.New("expectation not met")
)

// ParseError represents a scenario file that could not be decoded.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// FieldError describes one invalid scenario field.
type FieldError struct {
	// Field is the location, e.g. "subscriptions[1].path".
	Field   string
	Message string
}

// Error implements the error interface.
func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError collects every problem found in a scenario.
type ValidationError struct {
	Scenario string
	Fields   []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("scenario %q: %s", e.Scenario, e.Fields[0])
	}
	msg := fmt.Sprintf("scenario %q: %d problems", e.Scenario, len(e.Fields))
	for _, f := range e.Fields {
		msg += "\n  " + f.Error()
	}
	return msg
}

// Unwrap returns ErrInvalidScenario.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidScenario
}
