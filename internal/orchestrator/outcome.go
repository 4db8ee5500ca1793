package orchestrator

import (
	"errors"
	"fmt"
)

// OutcomeKind classifies how a game ended.
type OutcomeKind string

const (
	Won                 OutcomeKind = "WON"
	Lost                OutcomeKind = "LOST"
	AbortedInvalidGuess OutcomeKind = "ABORTED_INVALID_GUESS"
	AbortedError        OutcomeKind = "ABORTED_ERROR"
)

// Outcome is the terminal classification of a game.
type Outcome struct {
	Kind         OutcomeKind
	AttemptsUsed int
	CorrectWord  string // when the environment revealed it
	TotalReward  float64
	Guesses      []string
	Err          *GameError // aborted outcomes only
}

// Message renders the outcome for a user.
func (o Outcome) Message() string {
	switch o.Kind {
	case Won:
		return fmt.Sprintf("Solved %s in %d attempt(s)", o.CorrectWord, o.AttemptsUsed)
	case Lost:
		if o.CorrectWord != "" {
			return fmt.Sprintf("Out of attempts after %d guesses, the word was %s", o.AttemptsUsed, o.CorrectWord)
		}
		return fmt.Sprintf("Out of attempts after %d guesses", o.AttemptsUsed)
	default:
		if o.Err != nil {
			return o.Err.Error()
		}
		return string(o.Kind)
	}
}

func abortedOutcome(err *GameError) Outcome {
	kind := AbortedError
	if errors.Is(err, ErrInvalidGuess) {
		kind = AbortedInvalidGuess
	}
	return Outcome{Kind: kind, Err: err}
}
