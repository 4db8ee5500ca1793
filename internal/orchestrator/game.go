package orchestrator

import (
	"context"
	"errors"
	"iter"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-arena/internal/board"
	"github.com/robalobadob/wordle-arena/internal/env"
	"github.com/robalobadob/wordle-arena/internal/extract"
	"github.com/robalobadob/wordle-arena/internal/sandbox"
	"github.com/robalobadob/wordle-arena/internal/stats"
)

// Game turns generated text into a played game.
type Game struct {
	Text    string      // raw model output
	Factory env.Factory // creates the environment for this game
	Sandbox []sandbox.Option
	Options []Option
}

// Prepared is a game ready to play, along with the strategy source it runs.
type Prepared struct {
	*Turns
	Source string
}

// Prepare extracts and loads the strategy, and only then opens the environment
// session. Extraction or load failures never touch the environment.
func (g Game) Prepare(ctx context.Context) (*Prepared, error) {
	source, err := extract.Extract(g.Text)
	if err != nil {
		return nil, newError(ErrExtraction, "no strategy function found in the generated text", err)
	}
	strategy, err := sandbox.Load(source, g.Sandbox...)
	if err != nil {
		return nil, newError(ErrEvaluation, "strategy could not be loaded", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, newError(ErrCanceled, "game canceled", err)
	}
	session, obs, err := env.Open(ctx, g.Factory)
	if err != nil {
		return nil, newError(ErrEnvironment, "environment reset failed", err)
	}
	log.Info().Str("session", session.ID).Int("maxAttempts", obs.MaxAttempts).Msg("game started")

	return &Prepared{Turns: New(strategy, session, obs, g.Options...), Source: source}, nil
}

// Run prepares and plays the game. A preparation failure yields a single
// terminal frame carrying the aborted outcome.
func (g Game) Run(ctx context.Context) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		p, err := g.Prepare(ctx)
		if err != nil {
			yield(failedFrame(asGameError(err)))
			return
		}
		for f := range p.Frames(ctx) {
			if !yield(f) {
				return
			}
		}
	}
}

// Play runs the game to completion. source is empty when extraction failed.
func (g Game) Play(ctx context.Context) (o Outcome, source string) {
	p, err := g.Prepare(ctx)
	if err != nil {
		gerr := asGameError(err)
		log.Warn().Err(gerr).Msg("game could not start")
		return abortedOutcome(gerr), ""
	}
	return p.Play(ctx), p.Source
}

func asGameError(err error) *GameError {
	var gerr *GameError
	if errors.As(err, &gerr) {
		return gerr
	}
	return newError(ErrEnvironment, "game could not start", err)
}

func failedFrame(err *GameError) Frame {
	o := abortedOutcome(err)
	snap := board.New(board.DefaultRows, board.DefaultCols).Snapshot()
	return Frame{
		State:   StateTerminal,
		Board:   snap,
		Stats:   stats.Summarize(snap),
		Outcome: &o,
	}
}
