package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidGridDimension indicates a lattice with fewer than two particles along an axis.
	ErrInvalidGridDimension = errors.New("dynamo: grid dimensions must be at least 2x2")

	// ErrInvalidTimeStep indicates a negative time step.
	ErrInvalidTimeStep = errors.New("dynamo: time step must not be negative")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnstable indicates the simulation became numerically unstable.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrUnknownComponent indicates a registry lookup for a name that is not registered.
	ErrUnknownComponent = errors.New("dynamo: unknown component")
)

// SimError wraps an error with simulation context.
type SimError struct {
	Step int
	Time float64
	Err  error
}

func (e *SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Err)
}

func (e *SimError) Unwrap() error {
	return e.Err
}

// CheckTimeStep returns ErrInvalidTimeStep for dt < 0 and for NaN.
func CheckTimeStep(dt float64) error {
	if dt < 0 || dt != dt {
		return fmt.Errorf("%w: got %g", ErrInvalidTimeStep, dt)
	}
	return nil
}
