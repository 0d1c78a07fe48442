package event

import (
	"log/slog"

	"github.com/google/uuid"
)

// SpaceOption configures an event Space.
type SpaceOption func(*spaceConfig)

// spaceConfig contains configuration for an event space.
type spaceConfig struct {
	// logger receives debug records for subscription and broadcast activity.
	logger *slog.Logger

	// newID generates subscription and event identifiers.
	newID func() string
}

// defaultSpaceConfig returns the default configuration.
func defaultSpaceConfig() spaceConfig {
	return spaceConfig{
		logger: slog.New(slog.DiscardHandler),
		newID:  uuid.NewString,
	}
}

// WithLogger sets the logger used by the space.
func WithLogger(logger *slog.Logger) SpaceOption {
	return func(c *spaceConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIDGenerator overrides how subscription and event IDs are generated.
func WithIDGenerator(fn func() string) SpaceOption {
	return func(c *spaceConfig) {
		if fn != nil {
			c.newID = fn
		}
	}
}
