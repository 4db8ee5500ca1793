package orchestrator

import (
	"context"
	"iter"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-arena/internal/board"
	"github.com/robalobadob/wordle-arena/internal/env"
	"github.com/robalobadob/wordle-arena/internal/metrics"
	"github.com/robalobadob/wordle-arena/internal/stats"
)

// DefaultWordLength is the guess length used unless WithWordLength says otherwise.
const DefaultWordLength = 5

// Strategy proposes the next guess from the full board. *sandbox.Strategy implements it.
type Strategy interface {
	Invoke(ctx context.Context, snap board.Snapshot) (string, error)
}

// Frame is one observable step of a game.
type Frame struct {
	State   State
	Attempt int    // attempts completed so far
	Guess   string // pending guess while awaiting feedback, else the last submitted guess
	Board   board.Snapshot
	Stats   stats.Stats
	Reward  float64
	Outcome *Outcome // set on the final frame only
}

// Option configures Turns.
type Option func(*Turns)

// WithWordLength sets the number of letters per guess.
func WithWordLength(n int) Option { return func(t *Turns) { t.wordLength = n } }

// WithMetrics reports steps and outcomes to m.
func WithMetrics(m metrics.Recorder) Option { return func(t *Turns) { t.metrics = m } }

// Turns owns the board and the environment session for one game.
type Turns struct {
	strategy    Strategy
	session     *env.Session
	board       *board.Board
	maxAttempts int
	wordLength  int
	metrics     metrics.Recorder

	state   State
	attempt int
	reward  float64
	guesses []string
	used    bool
	outcome *Outcome
}

// New prepares a game on an already reset session. reset is the observation
// the session's Reset returned.
func New(strategy Strategy, session *env.Session, reset env.Observation, opts ...Option) *Turns {
	t := &Turns{
		strategy:    strategy,
		session:     session,
		maxAttempts: reset.MaxAttempts,
		wordLength:  DefaultWordLength,
		metrics:     metrics.Nop{},
		state:       StateReady,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.board = board.New(t.maxAttempts, t.wordLength)
	return t
}

// State reports the current loop state.
func (t *Turns) State() State { return t.state }

// Outcome returns the terminal outcome once the game has ended.
func (t *Turns) Outcome() (Outcome, bool) {
	if t.outcome == nil {
		return Outcome{}, false
	}
	return *t.outcome, true
}

// Frames runs the game lazily: each frame is produced only when the consumer
// asks for the next one. The sequence can be ranged over once; a second range
// yields nothing. Stopping early ends the game as canceled and closes the
// session.
func (t *Turns) Frames(ctx context.Context) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		if t.used {
			return
		}
		t.used = true

		if !yield(t.frame("")) {
			t.stop()
			return
		}
		for {
			t.move(StateAwaitingGuess)
			if err := ctx.Err(); err != nil {
				yield(t.abort(newError(ErrCanceled, "game canceled", err)))
				return
			}

			guess, err := t.strategy.Invoke(ctx, t.board.Snapshot())
			if err != nil {
				yield(t.abort(classifyStrategyError(ctx, err)))
				return
			}

			t.move(StateAwaitingFeedback)
			if !yield(t.frame(guess)) {
				t.stop()
				return
			}
			if err := ctx.Err(); err != nil {
				yield(t.abort(newError(ErrCanceled, "game canceled", err)))
				return
			}

			obs, gerr := t.submit(ctx, guess)
			if gerr != nil {
				yield(t.abort(gerr))
				return
			}

			t.move(StateUpdating)
			if gerr := t.update(guess, obs); gerr != nil {
				yield(t.abort(gerr))
				return
			}

			switch {
			case obs.GameWon:
				yield(t.finish(Outcome{Kind: Won}, obs.CorrectWord))
				return
			case obs.GameLost, t.attempt >= t.maxAttempts:
				yield(t.finish(Outcome{Kind: Lost}, obs.CorrectWord))
				return
			}
			if !yield(t.frame(guess)) {
				t.stop()
				return
			}
		}
	}
}

// Play drives the game to completion and returns its outcome.
func (t *Turns) Play(ctx context.Context) Outcome {
	for range t.Frames(ctx) {
	}
	o, _ := t.Outcome()
	return o
}

// submit steps the environment and checks the observation is usable.
func (t *Turns) submit(ctx context.Context, guess string) (env.Observation, *GameError) {
	start := time.Now()
	obs, err := t.session.Step(ctx, env.Action{Guess: guess})
	t.metrics.ObserveStep("orchestrator", err == nil, time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return env.Observation{}, newError(ErrCanceled, "game canceled while waiting for feedback", err)
		}
		return env.Observation{}, newError(ErrEnvironment, "environment step failed", err)
	}
	if err := env.Validate(obs, t.wordLength); err != nil {
		return env.Observation{}, newError(ErrEnvironment, "environment returned an unusable observation", err)
	}
	log.Info().
		Str("session", t.session.ID).
		Int("attempt", t.attempt+1).
		Str("guess", guess).
		Float64("reward", obs.Reward).
		Msg("guess scored")
	return obs, nil
}

// update writes exactly one board row for a completed attempt.
func (t *Turns) update(guess string, obs env.Observation) *GameError {
	cells, err := env.Cells(obs)
	if err != nil {
		return newError(ErrEnvironment, "environment returned an unusable observation", err)
	}
	row := min(t.attempt, t.board.Rows()-1)
	if err := t.board.WriteRow(row, cells); err != nil {
		return newError(ErrEnvironment, "feedback does not fit the board", err)
	}
	t.attempt++
	t.reward += obs.Reward
	t.guesses = append(t.guesses, guess)
	return nil
}

func (t *Turns) move(to State) {
	if err := transition(t.state, to); err != nil {
		panic(err)
	}
	t.state = to
}

func (t *Turns) frame(guess string) Frame {
	if guess == "" && len(t.guesses) > 0 {
		guess = t.guesses[len(t.guesses)-1]
	}
	snap := t.board.Snapshot()
	return Frame{
		State:   t.state,
		Attempt: t.attempt,
		Guess:   guess,
		Board:   snap,
		Stats:   stats.Summarize(snap),
		Reward:  t.reward,
	}
}

func (t *Turns) abort(err *GameError) Frame {
	return t.finish(abortedOutcome(err), "")
}

// finish moves to TERMINAL, tears the session down and builds the final frame.
func (t *Turns) finish(o Outcome, correctWord string) Frame {
	t.move(StateTerminal)
	o.AttemptsUsed = t.attempt
	o.TotalReward = t.reward
	o.Guesses = append([]string(nil), t.guesses...)
	if correctWord != "" {
		o.CorrectWord = correctWord
	}
	t.outcome = &o

	if err := t.session.Close(); err != nil {
		log.Warn().Err(err).Str("session", t.session.ID).Msg("close environment session")
	}

	f := t.frame("")
	f.Outcome = t.outcome
	t.metrics.ObserveGame(string(o.Kind), o.AttemptsUsed, f.Stats.AccuracyPercent)

	ev := log.Info()
	if o.Err != nil {
		ev = log.Warn().Err(o.Err)
	}
	ev.Str("session", t.session.ID).
		Str("outcome", string(o.Kind)).
		Int("attempts", o.AttemptsUsed).
		Float64("reward", o.TotalReward).
		Int("accuracy", f.Stats.AccuracyPercent).
		Msg("game finished")
	return f
}

// stop ends a game whose consumer stopped reading frames.
func (t *Turns) stop() {
	t.finish(abortedOutcome(newError(ErrCanceled, "frame consumer stopped", nil)), "")
}
