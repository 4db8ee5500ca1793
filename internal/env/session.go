// internal/env/session.go
//
// Session owns one environment for the lifetime of one game.
// It is created per game, stepped by a single owner, and torn down on a
// terminal state. Nothing about an environment outlives its session.

package env

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Factory creates a fresh environment for a new session.
type Factory func(ctx context.Context) (Environment, error)

// ErrSessionClosed is returned by Step after Close.
var ErrSessionClosed = errors.New("env: session closed")

// Session serializes access to one Environment.
type Session struct {
	ID string

	mu       sync.Mutex
	env      Environment
	closed   bool
	lastUsed time.Time
}

// NewSession wraps an environment that has not been reset yet.
func NewSession(e Environment) *Session {
	return &Session{ID: uuid.NewString(), env: e, lastUsed: time.Now()}
}

// Open creates the environment and issues the initial Reset.
func Open(ctx context.Context, factory Factory) (*Session, Observation, error) {
	e, err := factory(ctx)
	if err != nil {
		return nil, Observation{}, fmt.Errorf("env: create: %w", err)
	}
	s := NewSession(e)
	obs, err := s.Reset(ctx)
	if err != nil {
		_ = s.Close()
		return nil, Observation{}, err
	}
	log.Debug().Str("session", s.ID).Int("maxAttempts", obs.MaxAttempts).Msg("environment session opened")
	return s, obs, nil
}

// Reset starts a new game on the session's environment.
func (s *Session) Reset(ctx context.Context) (Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Observation{}, ErrSessionClosed
	}
	s.lastUsed = time.Now()
	obs, err := s.env.Reset(ctx)
	if err != nil {
		return Observation{}, fmt.Errorf("env: reset: %w", err)
	}
	if err := ValidateReset(obs); err != nil {
		return Observation{}, err
	}
	return obs, nil
}

// Step submits one action. Calls never overlap.
func (s *Session) Step(ctx context.Context, a Action) (Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Observation{}, ErrSessionClosed
	}
	s.lastUsed = time.Now()
	obs, err := s.env.Step(ctx, a)
	if err != nil {
		return Observation{}, fmt.Errorf("env: step: %w", err)
	}
	return obs, nil
}

// LastUsed is when the session was created or last reset or stepped.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Close tears the environment down. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	log.Debug().Str("session", s.ID).Msg("environment session closed")
	return s.env.Close()
}
