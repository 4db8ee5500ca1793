// internal/env/env.go
//
// Boundary to the guessing environment.
// Defines:
//   - Status / LetterFeedback / Action / Observation: the wire-level contract.
//   - Environment: reset + step, implemented in-process (Local) or over HTTP (Client).
//   - Validate / Cells: checks that an observation is usable and converts its
//     feedback into board cells.

package env

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/robalobadob/wordle-arena/internal/board"
)

// Status is the environment's per-letter verdict.
type Status string

const (
	NotInWord     Status = "NOT_IN_WORD"
	WrongPosition Status = "WRONG_POSITION"
	Correct       Status = "CORRECT"
)

// LetterFeedback is the verdict for one position of the submitted guess.
type LetterFeedback struct {
	Letter string `json:"letter"`
	Status Status `json:"status"`
}

// Action is a single guess submission.
type Action struct {
	Guess string `json:"guess"`
}

// Observation is what reset and step return.
type Observation struct {
	Feedback      []LetterFeedback `json:"feedback"`
	AttemptNumber int              `json:"attempt_number"`
	MaxAttempts   int              `json:"max_attempts"`
	GameWon       bool             `json:"game_won"`
	GameLost      bool             `json:"game_lost"`
	Reward        float64          `json:"reward"`
	CorrectWord   string           `json:"correct_word,omitempty"`
}

// Environment adjudicates guesses. Implementations are stepped by one owner at
// a time; Session enforces that.
type Environment interface {
	Reset(ctx context.Context) (Observation, error)
	Step(ctx context.Context, a Action) (Observation, error)
	Close() error
}

// ErrUnusable marks an observation the core cannot reconcile into the board.
var ErrUnusable = errors.New("env: unusable observation")

// ValidateReset checks a reset observation.
func ValidateReset(obs Observation) error {
	if obs.MaxAttempts <= 0 {
		return fmt.Errorf("%w: max_attempts=%d", ErrUnusable, obs.MaxAttempts)
	}
	if obs.GameWon || obs.GameLost {
		return fmt.Errorf("%w: game already over after reset", ErrUnusable)
	}
	return nil
}

// Validate checks a step observation against the expected word length.
func Validate(obs Observation, wordLength int) error {
	if obs.GameWon && obs.GameLost {
		return fmt.Errorf("%w: both won and lost", ErrUnusable)
	}
	if len(obs.Feedback) != wordLength {
		return fmt.Errorf("%w: %d feedback entries, want %d", ErrUnusable, len(obs.Feedback), wordLength)
	}
	for i, fb := range obs.Feedback {
		if utf8.RuneCountInString(fb.Letter) != 1 {
			return fmt.Errorf("%w: position %d letter %q", ErrUnusable, i, fb.Letter)
		}
		if _, ok := statusCode(fb.Status); !ok {
			return fmt.Errorf("%w: position %d status %q", ErrUnusable, i, fb.Status)
		}
	}
	return nil
}

// Cells converts validated feedback into board cells.
func Cells(obs Observation) ([]board.Cell, error) {
	out := make([]board.Cell, len(obs.Feedback))
	for i, fb := range obs.Feedback {
		st, ok := statusCode(fb.Status)
		if !ok {
			return nil, fmt.Errorf("%w: position %d status %q", ErrUnusable, i, fb.Status)
		}
		r, _ := utf8.DecodeRuneInString(fb.Letter)
		out[i] = board.Cell{Letter: r, Status: st}
	}
	return out, nil
}

func statusCode(s Status) (board.Status, bool) {
	switch s {
	case NotInWord:
		return board.Absent, true
	case WrongPosition:
		return board.Misplaced, true
	case Correct:
		return board.Correct, true
	default:
		return board.Empty, false
	}
}
