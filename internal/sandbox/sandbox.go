// internal/sandbox/sandbox.go
//
// Trust boundary for model-written strategies.
// Responsibilities:
//   - Materialize strategy source into a Starlark program with an explicit,
//     enumerated set of predeclared bindings (see bindings.go). The program
//     gets no filesystem, network, clock, or environment access.
//   - Invoke the `strategy(letters_board, status_board)` callable once per
//     attempt on a fresh thread with a step budget and ctx cancellation.
//   - Validate the returned value before anything downstream sees it.
//
// Notes:
//   - Module globals are frozen after loading, so nothing the strategy stores
//     at top level survives between calls. Each call receives fresh lists.
//   - Failures never escape as panics; they come back as *EvalError or
//     ErrInvalidResult.

package sandbox

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/robalobadob/wordle-arena/internal/board"
)

const (
	EntryPoint        = "strategy"
	DefaultMaxSteps   = 5_000_000
	DefaultWordLength = board.DefaultCols
	sourceName        = "strategy.star"
)

// fileOptions relax Starlark towards the Python the models write.
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// Options tune loading and invocation.
type Options struct {
	MaxSteps   uint64
	WordLength int
	Seed       uint64
	Bindings   []string // enumerated binding names; nil means DefaultBindings
}

// Option mutates Options.
type Option func(*Options)

func WithMaxSteps(n uint64) Option { return func(o *Options) { o.MaxSteps = n } }
func WithWordLength(n int) Option  { return func(o *Options) { o.WordLength = n } }
func WithSeed(seed uint64) Option  { return func(o *Options) { o.Seed = seed } }
func WithBindings(names ...string) Option {
	return func(o *Options) { o.Bindings = append([]string{}, names...) }
}

func buildOptions(opts []Option) Options {
	o := Options{MaxSteps: DefaultMaxSteps, WordLength: DefaultWordLength}
	for _, fn := range opts {
		fn(&o)
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.WordLength <= 0 {
		o.WordLength = DefaultWordLength
	}
	if o.Bindings == nil {
		o.Bindings = DefaultBindings
	}
	return o
}

// Strategy is a materialized, callable strategy.
type Strategy struct {
	opts   Options
	source string
	fn     starlark.Callable

	mu  sync.Mutex // serializes calls; the rng is shared across them
	rng *rand.Rand
}

// Source returns the text the strategy was loaded from.
func (s *Strategy) Source() string { return s.source }

// Load materializes code and resolves the `strategy` callable.
func Load(code string, opts ...Option) (*Strategy, error) {
	o := buildOptions(opts)
	s := &Strategy{
		opts:   o,
		source: code,
		rng:    rand.New(rand.NewPCG(o.Seed, o.Seed^0x9e3779b97f4a7c15)),
	}

	predeclared, err := s.predeclared()
	if err != nil {
		return nil, err
	}
	src, err := rewriteImports(code, predeclared)
	if err != nil {
		return nil, &EvalError{Phase: PhaseLoad, Err: err}
	}

	thread := s.newThread("load")
	globals, err := starlark.ExecFileOptions(fileOptions, thread, sourceName, src, predeclared)
	if err != nil {
		return nil, &EvalError{Phase: PhaseLoad, Err: err}
	}
	v, ok := globals[EntryPoint]
	if !ok {
		return nil, &EvalError{Phase: PhaseLoad, Err: fmt.Errorf("no %q function defined", EntryPoint)}
	}
	fn, ok := v.(starlark.Callable)
	if !ok {
		return nil, &EvalError{Phase: PhaseLoad, Err: fmt.Errorf("%q is a %s, not a function", EntryPoint, v.Type())}
	}
	s.fn = fn
	return s, nil
}

// Invoke calls the strategy with the full accumulated board and returns the
// upper-cased guess. A malformed return value yields ErrInvalidResult.
func (s *Strategy) Invoke(ctx context.Context, snap board.Snapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", &EvalError{Phase: PhaseCall, Err: err}
	}

	thread := s.newThread("call")
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	letters, status := toStarlark(snap)
	v, err := starlark.Call(thread, s.fn, starlark.Tuple{letters, status}, nil)
	if err != nil {
		var ee *starlark.EvalError
		if errors.As(err, &ee) {
			log.Debug().Str("backtrace", ee.Backtrace()).Msg("strategy call failed")
		}
		return "", &EvalError{Phase: PhaseCall, Err: err}
	}
	return validate(v, s.opts.WordLength)
}

// Invoke is the one-shot form: load code, call it once with snap.
func Invoke(ctx context.Context, code string, snap board.Snapshot, opts ...Option) (string, error) {
	s, err := Load(code, opts...)
	if err != nil {
		return "", err
	}
	return s.Invoke(ctx, snap)
}

func (s *Strategy) newThread(name string) *starlark.Thread {
	t := &starlark.Thread{
		Name: "strategy/" + name,
		Print: func(_ *starlark.Thread, msg string) {
			log.Debug().Str("source", "strategy").Msg(msg)
		},
	}
	t.SetMaxExecutionSteps(s.opts.MaxSteps)
	return t
}

// validate enforces the guess protocol: a string of exactly wordLength ASCII letters.
func validate(v starlark.Value, wordLength int) (string, error) {
	str, ok := starlark.AsString(v)
	if !ok {
		return "", fmt.Errorf("%w: got %s, want string", ErrInvalidResult, v.Type())
	}
	if n := len([]rune(str)); n != wordLength {
		return "", fmt.Errorf("%w: %q has %d letters, want %d", ErrInvalidResult, str, n, wordLength)
	}
	for _, r := range str {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return "", fmt.Errorf("%w: %q contains non-alphabetic %q", ErrInvalidResult, str, r)
		}
	}
	return strings.ToUpper(str), nil
}

// toStarlark converts a snapshot into fresh, mutable Starlark lists.
func toStarlark(snap board.Snapshot) (*starlark.List, *starlark.List) {
	letters := make([]starlark.Value, len(snap.Letters))
	for r, row := range snap.Letters {
		cells := make([]starlark.Value, len(row))
		for c, l := range row {
			cells[c] = starlark.String(l)
		}
		letters[r] = starlark.NewList(cells)
	}
	status := make([]starlark.Value, len(snap.Status))
	for r, row := range snap.Status {
		cells := make([]starlark.Value, len(row))
		for c, st := range row {
			cells[c] = starlark.MakeInt(st)
		}
		status[r] = starlark.NewList(cells)
	}
	return starlark.NewList(letters), starlark.NewList(status)
}
