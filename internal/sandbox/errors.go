package sandbox

import (
	"errors"
	"fmt"
)

// ErrInvalidResult marks a strategy that returned, but returned something that
// is not a valid guess.
var ErrInvalidResult = errors.New("sandbox: invalid strategy result")

// Phase identifies where evaluation failed.
type Phase string

const (
	PhaseLoad Phase = "load"
	PhaseCall Phase = "call"
)

// EvalError wraps a failure to materialize or run strategy code.
type EvalError struct {
	Phase Phase
	Err   error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("sandbox: strategy %s failed: %v", e.Phase, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }
