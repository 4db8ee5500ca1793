// internal/env/client.go
//
// HTTP client for a remote environment served by internal/envserver.
//
// Endpoints used:
//   - POST   /sessions            → {"id": "..."}
//   - POST   /sessions/{id}/reset → Observation
//   - POST   /sessions/{id}/step  → Observation (body: Action)
//   - DELETE /sessions/{id}
//
// Error responses carry {"error": "..."} and are surfaced verbatim.

package env

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/robalobadob/wordle-arena/internal/auth"
)

// Client is an Environment backed by a remote server session.
type Client struct {
	base   string
	http   *http.Client
	secret string
	id     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption { return func(c *Client) { c.http = hc } }

// WithSecret signs every request with a bearer token derived from secret.
func WithSecret(secret string) ClientOption { return func(c *Client) { c.secret = secret } }

// Dial creates a remote session.
func Dial(ctx context.Context, baseURL string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	var res struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/sessions", nil, &res); err != nil {
		return nil, err
	}
	if res.ID == "" {
		return nil, fmt.Errorf("env: server returned empty session id")
	}
	c.id = res.ID
	return c, nil
}

// ClientFactory returns a Factory that dials baseURL for every session.
func ClientFactory(baseURL string, opts ...ClientOption) Factory {
	return func(ctx context.Context) (Environment, error) {
		return Dial(ctx, baseURL, opts...)
	}
}

// SessionID is the server-side session identifier.
func (c *Client) SessionID() string { return c.id }

func (c *Client) Reset(ctx context.Context) (Observation, error) {
	var obs Observation
	err := c.do(ctx, http.MethodPost, "/sessions/"+c.id+"/reset", nil, &obs)
	return obs, err
}

func (c *Client) Step(ctx context.Context, a Action) (Observation, error) {
	var obs Observation
	err := c.do(ctx, http.MethodPost, "/sessions/"+c.id+"/step", a, &obs)
	return obs, err
}

// Close deletes the remote session.
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.do(ctx, http.MethodDelete, "/sessions/"+c.id, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("env: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("env: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		tok, _, err := auth.Sign(c.secret, "wordle-arena", time.Hour)
		if err != nil {
			return fmt.Errorf("env: sign token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("env: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = resp.Status
		}
		return fmt.Errorf("env: %s %s: %d %s", method, path, resp.StatusCode, e.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUnusable, err)
	}
	return nil
}
