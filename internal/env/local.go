// internal/env/local.go
//
// In-process environment backed by the game rules engine.
//
// Answer modes:
//   - "random": drawn from the answers list (default). Sessions from one
//     LocalFactory share a generator, so each game gets a fresh draw; a zero
//     Seed seeds it from the runtime's random source.
//   - "daily":  HMAC(salt, date) index into the answers list.
//   - "fixed":  the configured answer (tests, demos).

package env

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/robalobadob/wordle-arena/internal/daily"
	"github.com/robalobadob/wordle-arena/internal/game"
	"github.com/robalobadob/wordle-arena/internal/words"
)

const (
	ModeRandom = "random"
	ModeDaily  = "daily"
	ModeFixed  = "fixed"
)

// ErrNotReset is returned by Step before the first Reset.
var ErrNotReset = errors.New("env: step before reset")

// LocalConfig configures a Local environment.
type LocalConfig struct {
	Words       *words.List
	Mode        string
	Answer      string // ModeFixed only
	Salt        string // ModeDaily only
	MaxAttempts int
	Strict      bool   // restrict guesses to the allowed list
	Seed        uint64 // 0 draws a random seed
	Now         func() time.Time
}

// Local adjudicates guesses with internal/game.
type Local struct {
	cfg LocalConfig

	mu   sync.Mutex
	src  *source
	game *game.Game
}

// source is an answer generator shared by the sessions of one factory.
type source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newSource(seed uint64) *source {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &source{rng: rand.New(rand.NewPCG(seed, seed+1))}
}

func (s *source) answer(l *words.List) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return l.RandomAnswer(s.rng)
}

// NewLocal validates cfg and returns a ready environment.
func NewLocal(cfg LocalConfig) (*Local, error) {
	return newLocal(cfg, nil)
}

func newLocal(cfg LocalConfig, src *source) (*Local, error) {
	if cfg.Words == nil {
		cfg.Words = words.Default()
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeRandom
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = game.DefaultRows
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	switch cfg.Mode {
	case ModeRandom, ModeDaily:
	case ModeFixed:
		if len(cfg.Answer) != words.WordLength {
			return nil, fmt.Errorf("env: fixed answer %q must have %d letters", cfg.Answer, words.WordLength)
		}
	default:
		return nil, fmt.Errorf("env: unknown answer mode %q", cfg.Mode)
	}
	if src == nil {
		src = newSource(cfg.Seed)
	}
	return &Local{cfg: cfg, src: src}, nil
}

func (l *Local) pickAnswer() string {
	switch l.cfg.Mode {
	case ModeFixed:
		return l.cfg.Answer
	case ModeDaily:
		return daily.Answer(l.cfg.Now(), l.cfg.Salt, l.cfg.Words.Answers())
	default:
		return l.src.answer(l.cfg.Words)
	}
}

// Reset starts a new game.
func (l *Local) Reset(ctx context.Context) (Observation, error) {
	if err := ctx.Err(); err != nil {
		return Observation{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	opts := []game.Option{game.WithRows(l.cfg.MaxAttempts)}
	if l.cfg.Strict {
		opts = append(opts, game.WithDictionary(l.cfg.Words))
	}
	l.game = game.New(l.pickAnswer(), opts...)
	return Observation{
		Feedback:    []LetterFeedback{},
		MaxAttempts: l.game.Rows,
	}, nil
}

// Step applies one guess.
func (l *Local) Step(ctx context.Context, a Action) (Observation, error) {
	if err := ctx.Err(); err != nil {
		return Observation{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.game == nil {
		return Observation{}, ErrNotReset
	}
	marks, state, err := l.game.ApplyGuess(a.Guess)
	if err != nil {
		return Observation{}, fmt.Errorf("env: step %q: %w", a.Guess, err)
	}

	guess := strings.ToUpper(strings.TrimSpace(a.Guess))
	obs := Observation{
		Feedback:      make([]LetterFeedback, len(marks)),
		AttemptNumber: l.game.Attempts(),
		MaxAttempts:   l.game.Rows,
		GameWon:       state == game.StateWon,
		GameLost:      state == game.StateLost,
		Reward:        game.Reward(marks),
	}
	for i, m := range marks {
		obs.Feedback[i] = LetterFeedback{Letter: guess[i : i+1], Status: markStatus(m)}
	}
	if obs.GameWon || obs.GameLost {
		obs.CorrectWord = strings.ToUpper(l.game.Answer)
	}
	return obs, nil
}

// Close drops the current game.
func (l *Local) Close() error {
	l.mu.Lock()
	l.game = nil
	l.mu.Unlock()
	return nil
}

func markStatus(m game.Mark) Status {
	switch m {
	case game.MarkHit:
		return Correct
	case game.MarkPresent:
		return WrongPosition
	default:
		return NotInWord
	}
}

// LocalFactory returns a Factory creating a fresh Local per session. All of
// them draw random answers from one generator.
func LocalFactory(cfg LocalConfig) Factory {
	src := newSource(cfg.Seed)
	return func(ctx context.Context) (Environment, error) {
		return newLocal(cfg, src)
	}
}
