// Package metrics provides Prometheus-based counters for games and environment calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives game and environment events.
type Recorder interface {
	// ObserveGame records a finished game by outcome kind.
	ObserveGame(outcome string, attempts int, accuracyPercent int)
	// ObserveStep records one environment step.
	ObserveStep(source string, success bool, duration time.Duration)
	// ObserveSessions tracks environment sessions held by a server.
	ObserveSessions(active int)
}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	gamesTotal     *prometheus.CounterVec
	attempts       *prometheus.HistogramVec
	accuracy       prometheus.Histogram
	stepsTotal     *prometheus.CounterVec
	stepDuration   *prometheus.HistogramVec
	activeSessions prometheus.Gauge
}

// NewPrometheusRecorder registers metrics on reg. Pass prometheus.DefaultRegisterer
// for the process-wide registry; tests pass a fresh prometheus.NewRegistry().
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	f := promauto.With(reg)
	return &PrometheusRecorder{
		gamesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arena_games_total",
				Help: "Total number of finished games by outcome",
			},
			[]string{"outcome"},
		),
		attempts: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arena_game_attempts",
				Help:    "Attempts used per finished game",
				Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
			},
			[]string{"outcome"},
		),
		accuracy: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "arena_game_accuracy_percent",
				Help:    "Final board accuracy per finished game",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),
		stepsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arena_env_steps_total",
				Help: "Total number of environment steps by source and status",
			},
			[]string{"source", "status"},
		),
		stepDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arena_env_step_duration_seconds",
				Help:    "Duration of environment steps in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		activeSessions: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "arena_env_active_sessions",
				Help: "Environment sessions currently held by the server",
			},
		),
	}
}

func (p *PrometheusRecorder) ObserveGame(outcome string, attempts int, accuracyPercent int) {
	p.gamesTotal.WithLabelValues(outcome).Inc()
	p.attempts.WithLabelValues(outcome).Observe(float64(attempts))
	p.accuracy.Observe(float64(accuracyPercent))
}

func (p *PrometheusRecorder) ObserveStep(source string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	p.stepsTotal.WithLabelValues(source, status).Inc()
	p.stepDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) ObserveSessions(active int) {
	p.activeSessions.Set(float64(active))
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveGame(string, int, int)            {}
func (Nop) ObserveStep(string, bool, time.Duration) {}
func (Nop) ObserveSessions(int)                     {}
