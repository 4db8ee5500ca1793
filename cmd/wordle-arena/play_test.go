package main

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle-arena/internal/metrics"
)

func TestMetricTotals(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	rec.ObserveStep("orchestrator", true, 200*time.Millisecond)
	rec.ObserveStep("orchestrator", false, 300*time.Millisecond)
	rec.ObserveGame("WON", 2, 70)

	totals, err := metricTotals(reg)
	require.NoError(t, err)
	assert.Equal(t, 2.0, totals["arena_env_steps_total"])
	assert.Equal(t, 2.0, totals["arena_env_step_duration_seconds"])
	assert.InDelta(t, 0.5, totals["arena_env_step_duration_seconds_sum"], 1e-9)
	assert.Equal(t, 1.0, totals["arena_games_total"])
	assert.Equal(t, 70.0, totals["arena_game_accuracy_percent_sum"])
}

func TestMetricTotals_Empty(t *testing.T) {
	totals, err := metricTotals(prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Empty(t, totals)
}
