package model

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

const (
	// DefaultOllamaHost is used when no host is configured or the host is invalid.
	DefaultOllamaHost = "http://localhost:11434"
	// DefaultOllamaModel is used when no model name is configured.
	DefaultOllamaModel = "qwen2.5-coder:7b"
)

var errStopped = errors.New("model: consumer stopped")

// Ollama streams completions from an Ollama server.
type Ollama struct {
	client      *api.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewOllama creates a generator for model on hostURL.
func NewOllama(hostURL, model string, maxTokens int, temperature float64) *Ollama {
	if hostURL == "" {
		hostURL = DefaultOllamaHost
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	parsedURL, err := url.Parse(hostURL)
	if err != nil {
		parsedURL, _ = url.Parse(DefaultOllamaHost)
	}
	return &Ollama{
		client:      api.NewClient(parsedURL, http.DefaultClient),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (o *Ollama) Generate(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream := true
		req := &api.GenerateRequest{
			Model:  o.model,
			Prompt: prompt,
			Stream: &stream,
			Options: map[string]any{
				"temperature": o.temperature,
				"num_predict": o.maxTokens,
			},
		}
		err := o.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
			if resp.Response == "" {
				return nil
			}
			if !yield(resp.Response, nil) {
				return errStopped
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopped) {
			yield("", fmt.Errorf("model: ollama generate: %w", err))
		}
	}
}
