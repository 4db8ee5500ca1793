// Package model is the boundary to the language model that writes strategies.
//
// A Generator streams a completion for a prompt as text fragments. Backends:
//   - "ollama":    local Ollama server, streaming /api/generate.
//   - "anthropic": Anthropic Messages API, streaming.
//   - "file":      replays a saved completion line by line (offline runs, tests).
package model

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
)

const (
	BackendOllama    = "ollama"
	BackendAnthropic = "anthropic"
	BackendFile      = "file"
)

// ErrEmptyCompletion is returned by Collect when the model produced no text.
var ErrEmptyCompletion = errors.New("model: empty completion")

// Generator streams a completion. The sequence ends after the first error.
type Generator interface {
	Generate(ctx context.Context, prompt string) iter.Seq2[string, error]
}

// Config selects and configures a backend.
type Config struct {
	Backend     string
	Host        string // ollama server URL
	Name        string // model name; empty picks the backend default
	APIKey      string // anthropic
	File        string // file backend
	MaxTokens   int
	Temperature float64
}

// ModelName is the model a generator built from c talks to: Name, or the
// backend's default when Name is empty.
func (c Config) ModelName() string {
	if c.Name != "" {
		return c.Name
	}
	switch c.Backend {
	case BackendAnthropic:
		return DefaultAnthropicModel
	case BackendFile:
		return c.File
	default:
		return DefaultOllamaModel
	}
}

// New builds the Generator named by cfg.Backend.
func New(cfg Config) (Generator, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	switch cfg.Backend {
	case BackendOllama, "":
		return NewOllama(cfg.Host, cfg.Name, cfg.MaxTokens, cfg.Temperature), nil
	case BackendAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("model: anthropic backend needs an API key")
		}
		return NewAnthropic(cfg.APIKey, cfg.Name, cfg.MaxTokens, cfg.Temperature), nil
	case BackendFile:
		if cfg.File == "" {
			return nil, fmt.Errorf("model: file backend needs a path")
		}
		return NewFile(cfg.File), nil
	default:
		return nil, fmt.Errorf("model: unknown backend %q", cfg.Backend)
	}
}

// Accumulate turns a fragment stream into a stream of the text received so far.
func Accumulate(seq iter.Seq2[string, error]) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var sb strings.Builder
		for frag, err := range seq {
			if err != nil {
				yield(sb.String(), err)
				return
			}
			sb.WriteString(frag)
			if !yield(sb.String(), nil) {
				return
			}
		}
	}
}

// Collect drains a Generator into the full completion text.
func Collect(ctx context.Context, g Generator, prompt string) (string, error) {
	var text string
	for acc, err := range Accumulate(g.Generate(ctx, prompt)) {
		if err != nil {
			return acc, err
		}
		text = acc
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
