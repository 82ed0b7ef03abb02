package sim

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("sim: invalid config")

// StepError locates a failure within a run.
type StepError struct {
	Step int
	Time float64
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("sim: step %d at t=%.6gs: %v", e.Step, e.Time, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
