package culture

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a configuration rejected before any step runs.
	ErrInvalidConfig = errors.New("culture: invalid configuration")

	// ErrEmptyEnvironment indicates replication was requested with no agents.
	ErrEmptyEnvironment = errors.New("culture: environment is empty")

	// ErrDiverged indicates the population estimate became NaN or Inf.
	ErrDiverged = errors.New("culture: population estimate diverged")
)

// ConfigError names the offending field of a rejected configuration.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s=%v %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// SimulationError wraps an error with step context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
