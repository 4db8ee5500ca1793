package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/robalobadob/wordle-arena/internal/sandbox"
)

// Error kinds. Every fatal condition carries exactly one of them.
var (
	ErrExtraction   = errors.New("extraction failure")
	ErrInvalidGuess = errors.New("invalid guess")
	ErrEnvironment  = errors.New("environment failure")
	ErrEvaluation   = errors.New("evaluation failure")
	ErrCanceled     = errors.New("canceled")
)

// GameError is a fatal game condition with a user-visible message.
type GameError struct {
	Kind error
	Msg  string
	Err  error
}

func (e *GameError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
}

// Is matches the error kind.
func (e *GameError) Is(target error) bool { return target == e.Kind }

func (e *GameError) Unwrap() error { return e.Err }

func newError(kind error, msg string, err error) *GameError {
	return &GameError{Kind: kind, Msg: msg, Err: err}
}

// classifyStrategyError maps a strategy failure onto an error kind.
func classifyStrategyError(ctx context.Context, err error) *GameError {
	switch {
	case ctx.Err() != nil:
		return newError(ErrCanceled, "game canceled while the strategy was running", ctx.Err())
	case errors.Is(err, sandbox.ErrInvalidResult):
		return newError(ErrInvalidGuess, "strategy returned an invalid guess", err)
	default:
		return newError(ErrEvaluation, "strategy failed to run", err)
	}
}
