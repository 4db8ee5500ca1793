// internal/game/engine.go
//
// Rules engine behind the in-process guessing environment.
// Responsibilities:
//   - Create games with fixed dimensions (default 6x5) for a chosen answer.
//   - Validate and apply guesses (length, alphabetic, optionally the allowed list).
//   - Score guesses using the classic two‑pass Wordle algorithm.
//   - Track state transitions: playing → won/lost, and the per-attempt reward.
//
// Notes:
//   - Mark is an enum defined in this package (MarkHit/MarkPresent/MarkMiss).
//   - The environment layer maps marks onto its wire statuses.

package game

import (
	"errors"
	"strings"

	"github.com/robalobadob/wordle-arena/internal/words"
)

const (
	DefaultRows = 6
	DefaultCols = words.WordLength
)

// Mark represents the evaluation result for a single letter in a guess.
type Mark string

const (
	MarkHit     Mark = "hit"     // correct letter, correct position
	MarkPresent Mark = "present" // letter in answer, different position
	MarkMiss    Mark = "miss"    // letter not in answer (or no copies left)
)

// State is the coarse lifecycle of a game.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

var (
	ErrFinished     = errors.New("game finished")
	ErrInvalidGuess = errors.New("invalid guess")
	ErrNotInList    = errors.New("not in word list")
)

// Game holds the state of a single game.
type Game struct {
	Answer   string   // The solution word (always lowercase).
	Rows     int      // Maximum number of guesses allowed.
	Cols     int      // Number of letters per word.
	Guesses  []string // Guesses made so far (lowercased).
	Finished bool     // True once the game is over (won or lost).
	Won      bool     // True if the game was finished with a win.

	allowed func(string) bool // nil accepts any alphabetic guess
}

// Option configures a new Game.
type Option func(*Game)

// WithRows overrides the maximum number of attempts.
func WithRows(n int) Option {
	return func(g *Game) {
		if n > 0 {
			g.Rows = n
		}
	}
}

// WithDictionary restricts guesses to the allowed list.
func WithDictionary(l *words.List) Option {
	return func(g *Game) { g.allowed = l.IsAllowed }
}

// New constructs a game for answer.
func New(answer string, opts ...Option) *Game {
	g := &Game{
		Answer:  strings.ToLower(answer),
		Rows:    DefaultRows,
		Cols:    len(answer),
		Guesses: []string{},
	}
	if g.Cols == 0 {
		g.Cols = DefaultCols
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ApplyGuess validates and scores a guess, mutating the game state.
// Returns: the per‑letter marks, the new state, or an error.
//
// Validation rules:
//   - Game must not be finished.
//   - Guess must be exactly g.Cols letters and alphabetic a–z.
//   - Guess must be in the allowed list when a dictionary is configured.
//
// State transitions:
//   - If all tiles are Hit → Finished = true, Won = true.
//   - Else if the number of guesses reaches g.Rows → Finished = true (loss).
func (g *Game) ApplyGuess(guess string) ([]Mark, State, error) {
	if g.Finished {
		return nil, g.State(), ErrFinished
	}
	guess = strings.ToLower(strings.TrimSpace(guess))
	if len(guess) != g.Cols || !isAlpha(guess) {
		return nil, g.State(), ErrInvalidGuess
	}
	if g.allowed != nil && !g.allowed(guess) {
		return nil, g.State(), ErrNotInList
	}

	marks := scoreGuess(g.Answer, guess)
	g.Guesses = append(g.Guesses, guess)

	if allHit(marks) {
		g.Finished, g.Won = true, true
	} else if len(g.Guesses) >= g.Rows {
		g.Finished = true
	}
	return marks, g.State(), nil
}

// Attempts is the number of guesses applied so far.
func (g *Game) Attempts() int { return len(g.Guesses) }

// State reports the coarse state of the game.
func (g *Game) State() State {
	if g.Finished {
		if g.Won {
			return StateWon
		}
		return StateLost
	}
	return StatePlaying
}

// Reward scores one attempt: 1.0 for a solved row, otherwise hits count
// double and presents single, normalised to [0, 1).
func Reward(marks []Mark) float64 {
	if len(marks) == 0 {
		return 0
	}
	if allHit(marks) {
		return 1
	}
	points := 0
	for _, m := range marks {
		switch m {
		case MarkHit:
			points += 2
		case MarkPresent:
			points++
		}
	}
	return float64(points) / float64(2*len(marks))
}

// scoreGuess implements the standard Wordle two‑pass scoring algorithm.
//
// Pass 1:
//   - Mark exact matches as Hit.
//   - Count remaining (non‑hit) answer letters by letter index.
//
// Pass 2:
//   - For each non‑hit guess letter: if there is remaining count for that letter,
//     mark Present and decrement the count; otherwise mark Miss.
//
// This ensures correct behavior with repeated letters in both answer and guess.
func scoreGuess(answer, guess string) []Mark {
	n := len(guess)
	res := make([]Mark, n)

	// Letter frequency for the non‑hit positions (a–z).
	var counts [26]int

	for i := 0; i < n; i++ {
		if guess[i] == answer[i] {
			res[i] = MarkHit
		} else {
			counts[idx(answer[i])]++
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == MarkHit {
			continue
		}
		j := idx(guess[i])
		if j >= 0 && j < 26 && counts[j] > 0 {
			res[i] = MarkPresent
			counts[j]--
		} else {
			res[i] = MarkMiss
		}
	}
	return res
}

// idx maps a lowercase ASCII letter to 0..25.
func idx(b byte) int { return int(b) - 'a' }

// isAlpha checks that a string consists only of lowercase a–z.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// allHit returns true if all marks are MarkHit.
func allHit(m []Mark) bool {
	for _, x := range m {
		if x != MarkHit {
			return false
		}
	}
	return true
}
