// internal/envserver/server.go
//
// HTTP server exposing guessing environments to remote strategy runners.
// Responsibilities:
//   - Router + middleware (JSON, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Session endpoints (bearer auth when a secret is configured):
//     POST /sessions, POST /sessions/{id}/reset, POST /sessions/{id}/step,
//     DELETE /sessions/{id}.
//
// Notes:
//   - Each session owns one environment created by the configured Factory.
//   - Sessions live in memory; a restart drops them.
//   - Sessions idle for longer than IdleTTL are closed and removed by a sweep
//     running alongside Start.
//   - Error bodies are {"error": "..."}; env.Client surfaces them verbatim.

package envserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-arena/internal/auth"
	"github.com/robalobadob/wordle-arena/internal/env"
	"github.com/robalobadob/wordle-arena/internal/game"
	"github.com/robalobadob/wordle-arena/internal/metrics"
	"github.com/robalobadob/wordle-arena/internal/store"
)

// Config wires a Server.
type Config struct {
	Factory  env.Factory
	Secret   string
	Metrics  metrics.Recorder
	Gatherer prometheus.Gatherer
	Timeout  time.Duration
	IdleTTL  time.Duration // default 30m
}

// DefaultIdleTTL is how long an unused session survives.
const DefaultIdleTTL = 30 * time.Minute

// Server bundles router, session store and environment factory.
type Server struct {
	r        *chi.Mux
	sessions store.Store[*env.Session]
	factory  env.Factory
	metrics  metrics.Recorder
	idleTTL  time.Duration
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg Config) *Server {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Nop{}
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	s := &Server{
		r:        chi.NewRouter(),
		sessions: store.NewMemoryStore[*env.Session](),
		factory:  cfg.Factory,
		metrics:  cfg.Metrics,
		idleTTL:  cfg.IdleTTL,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(cfg.Timeout))

	s.r.Use(jsonContentType)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordle-arena-env","endpoints":["/health","/metrics","POST /sessions"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.sessions.Len()})
	})
	// promhttp sets its own Content-Type
	s.r.Get("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}).ServeHTTP)

	// Sessions (auth when a secret is configured)
	s.r.Route("/sessions", func(r chi.Router) {
		r.Use(auth.Require(cfg.Secret))
		r.Post("/", s.handleCreate)
		r.Post("/{id}/reset", s.handleReset)
		r.Post("/{id}/step", s.handleStep)
		r.Delete("/{id}", s.handleDelete)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found: "+r.URL.Path)
	})

	return s
}

// Start begins serving HTTP on addr until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweepLoop(sweepCtx)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.closeAll()
		return err
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ SESSIONS -----------------------------------

type createRes struct {
	ID string `json:"id"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	e, err := s.factory(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("create environment")
		writeError(w, http.StatusInternalServerError, "create_failed")
		return
	}
	sess := env.NewSession(e)
	if err := s.sessions.Save(r.Context(), sess.ID, sess); err != nil {
		_ = sess.Close()
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.metrics.ObserveSessions(s.sessions.Len())
	log.Info().Str("session", sess.ID).Str("subject", auth.Subject(r.Context())).Msg("session created")
	writeJSON(w, http.StatusCreated, createRes{ID: sess.ID})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	obs, err := sess.Reset(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, obs)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var a env.Action
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	start := time.Now()
	obs, err := sess.Step(r.Context(), a)
	s.metrics.ObserveStep("server", err == nil, time.Since(start))
	if err != nil {
		log.Debug().Err(err).Str("session", sess.ID).Str("guess", a.Guess).Msg("step rejected")
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, obs)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Delete(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "session_not_found")
		return
	}
	if err := sess.Close(); err != nil {
		log.Warn().Err(err).Str("session", id).Msg("close environment")
	}
	s.metrics.ObserveSessions(s.sessions.Len())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*env.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session_not_found")
		return nil, false
	}
	return sess, true
}

// closeAll tears down every live session on shutdown.
func (s *Server) closeAll() {
	ctx := context.Background()
	var n int
	for _, id := range s.sessions.Keys() {
		sess, err := s.sessions.Delete(ctx, id)
		if err != nil {
			continue
		}
		_ = sess.Close()
		n++
	}
	s.metrics.ObserveSessions(0)
	log.Info().Int("sessions", n).Msg("environment server stopped")
}

// sweepLoop runs Sweep every half IdleTTL (at least every second) until ctx is done.
func (s *Server) sweepLoop(ctx context.Context) {
	t := time.NewTicker(max(s.idleTTL/2, time.Second))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.Sweep(now)
		}
	}
}

// Sweep closes and removes sessions not used since now minus IdleTTL and
// returns how many it removed.
func (s *Server) Sweep(now time.Time) int {
	ctx := context.Background()
	cutoff := now.Add(-s.idleTTL)
	var n int
	for _, id := range s.sessions.Keys() {
		sess, err := s.sessions.Get(ctx, id)
		if err != nil || sess.LastUsed().After(cutoff) {
			continue
		}
		if _, err := s.sessions.Delete(ctx, id); err != nil {
			continue
		}
		if err := sess.Close(); err != nil {
			log.Warn().Err(err).Str("session", id).Msg("close idle environment")
		}
		n++
	}
	if n > 0 {
		s.metrics.ObserveSessions(s.sessions.Len())
		log.Info().Int("sessions", n).Dur("idleTTL", s.idleTTL).Msg("idle sessions reclaimed")
	}
	return n
}

// statusFor maps environment errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrInvalidGuess), errors.Is(err, game.ErrNotInList):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrFinished), errors.Is(err, env.ErrNotReset):
		return http.StatusConflict
	case errors.Is(err, env.ErrSessionClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
