// Package orchestrator runs one game: it asks the strategy for a guess, submits
// it to the environment session, folds the feedback into the board, and yields
// a Frame after every step.
package orchestrator

import "fmt"

// State is the turn loop's position.
type State string

const (
	StateReady            State = "READY"
	StateAwaitingGuess    State = "AWAITING_GUESS"
	StateAwaitingFeedback State = "AWAITING_FEEDBACK"
	StateUpdating         State = "UPDATING"
	StateTerminal         State = "TERMINAL"
)

// validTransitions defines the turn loop's transition rules. Every non-terminal
// state may abort straight to TERMINAL.
var validTransitions = map[State][]State{
	StateReady: {
		StateAwaitingGuess,
		StateTerminal,
	},
	StateAwaitingGuess: {
		StateAwaitingFeedback, // strategy returned a valid guess
		StateTerminal,         // invalid guess, evaluation failure, cancellation
	},
	StateAwaitingFeedback: {
		StateUpdating,
		StateTerminal, // environment failure
	},
	StateUpdating: {
		StateAwaitingGuess, // neither won nor lost, attempts remain
		StateTerminal,
	},
	StateTerminal: {},
}

// IsValidTransition reports whether from → to is allowed.
func IsValidTransition(from, to State) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func (s State) IsTerminal() bool { return s == StateTerminal }

func transition(from, to State) error {
	if !IsValidTransition(from, to) {
		return fmt.Errorf("orchestrator: illegal transition %s -> %s", from, to)
	}
	return nil
}
