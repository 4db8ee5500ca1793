package envserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle-arena/internal/env"
	"github.com/robalobadob/wordle-arena/internal/metrics"
)

func newTestServer(t *testing.T, secret string) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	s := New(Config{
		Factory:  env.LocalFactory(env.LocalConfig{Mode: env.ModeFixed, Answer: "crane"}),
		Secret:   secret,
		Metrics:  metrics.NewPrometheusRecorder(reg),
		Gatherer: reg,
	})
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts, reg
}

func TestClient_PlaysFullGame(t *testing.T) {
	ts, _ := newTestServer(t, "")
	ctx := context.Background()

	c, err := env.Dial(ctx, ts.URL)
	require.NoError(t, err)
	assert.NotEmpty(t, c.SessionID())

	obs, err := c.Reset(ctx)
	require.NoError(t, err)
	require.NoError(t, env.ValidateReset(obs))
	assert.Equal(t, 6, obs.MaxAttempts)

	obs, err = c.Step(ctx, env.Action{Guess: "slate"})
	require.NoError(t, err)
	require.NoError(t, env.Validate(obs, 5))
	assert.Equal(t, 1, obs.AttemptNumber)
	assert.False(t, obs.GameWon)
	assert.Empty(t, obs.CorrectWord)

	obs, err = c.Step(ctx, env.Action{Guess: "crane"})
	require.NoError(t, err)
	assert.True(t, obs.GameWon)
	assert.Equal(t, "CRANE", obs.CorrectWord)
	assert.Equal(t, 1.0, obs.Reward)

	require.NoError(t, c.Close())
	assert.Equal(t, 0, healthSessions(t, ts.URL))
}

func TestClient_ViaSessionOpen(t *testing.T) {
	ts, _ := newTestServer(t, "")
	ctx := context.Background()

	s, obs, err := env.Open(ctx, env.ClientFactory(ts.URL))
	require.NoError(t, err)
	assert.Equal(t, 6, obs.MaxAttempts)
	assert.Equal(t, 1, healthSessions(t, ts.URL))

	_, err = s.Step(ctx, env.Action{Guess: "crane"})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Equal(t, 0, healthSessions(t, ts.URL))
}

func TestServer_StepErrors(t *testing.T) {
	ts, _ := newTestServer(t, "")
	ctx := context.Background()

	c, err := env.Dial(ctx, ts.URL)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Step(ctx, env.Action{Guess: "crane"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")

	_, err = c.Reset(ctx)
	require.NoError(t, err)

	_, err = c.Step(ctx, env.Action{Guess: "ab"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "invalid guess")

	_, err = c.Step(ctx, env.Action{Guess: "crane"})
	require.NoError(t, err)
	_, err = c.Step(ctx, env.Action{Guess: "crane"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game finished")
}

func TestServer_UnknownSession(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, err := http.Post(ts.URL+"/sessions/nope/step", "application/json", strings.NewReader(`{"guess":"crane"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "session_not_found", body["error"])

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/sessions/nope", nil)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestServer_BadJSON(t *testing.T) {
	ts, _ := newTestServer(t, "")
	c, err := env.Dial(context.Background(), ts.URL)
	require.NoError(t, err)
	defer c.Close()

	resp, err := http.Post(ts.URL+"/sessions/"+c.SessionID()+"/step", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Auth(t *testing.T) {
	ts, _ := newTestServer(t, "s3cret")
	ctx := context.Background()

	_, err := env.Dial(ctx, ts.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	_, err = env.Dial(ctx, ts.URL, env.WithSecret("wrong"))
	require.Error(t, err)

	c, err := env.Dial(ctx, ts.URL, env.WithSecret("s3cret"))
	require.NoError(t, err)
	_, err = c.Reset(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	// diagnostics stay public
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	ts, _ := newTestServer(t, "")
	ctx := context.Background()

	c, err := env.Dial(ctx, ts.URL)
	require.NoError(t, err)
	_, err = c.Reset(ctx)
	require.NoError(t, err)
	_, err = c.Step(ctx, env.Action{Guess: "slate"})
	require.NoError(t, err)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), `arena_env_steps_total{source="server",status="success"} 1`)
	assert.Contains(t, string(b), "arena_env_active_sessions 1")
}

func TestServer_NotFound(t *testing.T) {
	ts, _ := newTestServer(t, "")
	resp, err := http.Get(ts.URL + "/nowhere")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
}

func healthSessions(t *testing.T, base string) int {
	t.Helper()
	resp, err := http.Get(base + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body struct {
		OK       bool `json:"ok"`
		Sessions int  `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.True(t, body.OK)
	return body.Sessions
}

func TestServer_SweepsIdleSessions(t *testing.T) {
	s := New(Config{
		Factory: env.LocalFactory(env.LocalConfig{Mode: env.ModeFixed, Answer: "crane"}),
		IdleTTL: time.Minute,
	})
	ts := httptest.NewServer(s.Router())
	defer ts.Close()
	ctx := context.Background()

	idle, err := env.Dial(ctx, ts.URL)
	require.NoError(t, err)
	busy, err := env.Dial(ctx, ts.URL)
	require.NoError(t, err)
	defer busy.Close()
	assert.Equal(t, 2, healthSessions(t, ts.URL))

	assert.Equal(t, 0, s.Sweep(time.Now()), "nothing is idle yet")

	later := time.Now().Add(2 * time.Minute)
	assert.Equal(t, 2, s.Sweep(later))
	assert.Equal(t, 0, healthSessions(t, ts.URL))

	_, err = idle.Reset(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestServer_SweepKeepsRecentlyUsedSessions(t *testing.T) {
	s := New(Config{
		Factory: env.LocalFactory(env.LocalConfig{Mode: env.ModeFixed, Answer: "crane"}),
		IdleTTL: time.Hour,
	})
	ts := httptest.NewServer(s.Router())
	defer ts.Close()
	ctx := context.Background()

	c, err := env.Dial(ctx, ts.URL)
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Reset(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, s.Sweep(time.Now().Add(30*time.Minute)))
	_, err = c.Step(ctx, env.Action{Guess: "slate"})
	require.NoError(t, err)
}
