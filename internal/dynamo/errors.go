package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for environment operations.
var (
	// ErrConfiguration indicates an invalid or inconsistent setup value.
	ErrConfiguration = errors.New("dynamo: invalid configuration")

	// ErrInvalidInput indicates a malformed runtime input such as an action
	// or control point vector of the wrong length.
	ErrInvalidInput = errors.New("dynamo: invalid input")

	// ErrPostprocessing indicates diagnostics were requested but never collected.
	ErrPostprocessing = errors.New("dynamo: diagnostics were not collected")

	// ErrEpisodeState indicates an operation that is not allowed in the
	// current episode phase, such as stepping a finished episode.
	ErrEpisodeState = errors.New("dynamo: operation not allowed in current episode phase")
)

// ConfigError names the offending configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration.Error(), e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// NewConfigError builds a ConfigError with a formatted reason.
func NewConfigError(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
