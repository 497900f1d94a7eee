package workflow

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when the operator declines to replace an
// existing project.
var ErrCancelled = errors.New("submission cancelled")

// StageError is a failure of one submission stage. Stages after it did not
// run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage err failed in, or "" when err is not a
// *StageError.
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
