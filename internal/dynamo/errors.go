package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation and tuning.
var (
	// ErrInvalidScenario indicates a scenario that cannot be simulated.
	ErrInvalidScenario = errors.New("dynamo: invalid scenario")

	// ErrInvalidGains indicates a gain vector of the wrong size or with NaN/Inf.
	ErrInvalidGains = errors.New("dynamo: invalid gains")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrNonFiniteCost indicates an evaluation produced NaN or Inf.
	ErrNonFiniteCost = errors.New("dynamo: non-finite cost")

	// ErrUnknownParam indicates a name that is not a tunable parameter.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")
)

// ParamError reports the offending parameter and value.
type ParamError struct {
	Name    string
	Value   float64
	Wrapped error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s=%v", e.Wrapped.Error(), e.Name, e.Value)
}

func (e *ParamError) Unwrap() error {
	return e.Wrapped
}
