// Package history records finished games in SQLite so runs can be compared
// across models and strategies.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// timeLayout sorts lexically; times are always stored in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrNotFound is returned by Get for unknown run IDs.
var ErrNotFound = errors.New("history: run not found")

// Run is one finished game.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Model       string
	Outcome     string
	Attempts    int
	Accuracy    int
	Reward      float64
	CorrectWord string
	Guesses     []string
	Strategy    string
	Error       string
}

// Totals aggregates every recorded run.
type Totals struct {
	Played      int
	Won         int
	Lost        int
	Aborted     int
	AvgAttempts float64 // over won games
	AvgAccuracy float64
}

// Store is the run history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path and migrates it.
func Open(path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Insert records r, assigning an ID and finish time when missing.
func (s *Store) Insert(ctx context.Context, r *Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now().UTC()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = r.FinishedAt
	}
	guesses, err := json.Marshal(nonNil(r.Guesses))
	if err != nil {
		return fmt.Errorf("history: encode guesses: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO runs
            (id, started_at, finished_at, model, outcome, attempts, accuracy, reward,
             correct_word, guesses, strategy, error)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UTC().Format(timeLayout), r.FinishedAt.UTC().Format(timeLayout),
		r.Model, r.Outcome, r.Attempts, r.Accuracy, r.Reward,
		r.CorrectWord, string(guesses), r.Strategy, r.Error,
	)
	if err != nil {
		return fmt.Errorf("history: insert run: %w", err)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, model, outcome, attempts, accuracy, reward,
                    correct_word, guesses, strategy, error`

// Get loads one run.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id=?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// List returns the most recent runs first. A non-empty outcome filters by kind.
func (s *Store) List(ctx context.Context, outcome string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+runColumns+`
        FROM runs
        WHERE (? = '' OR outcome = ?)
        ORDER BY finished_at DESC, id ASC
        LIMIT ?`, outcome, outcome, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	out := make([]Run, 0, limit)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// Totals aggregates all runs.
func (s *Store) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	var avgAttempts, avgAccuracy sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(1),
               COALESCE(SUM(outcome = 'WON'), 0),
               COALESCE(SUM(outcome = 'LOST'), 0),
               COALESCE(SUM(outcome NOT IN ('WON', 'LOST')), 0),
               (SELECT AVG(attempts) FROM runs WHERE outcome = 'WON'),
               AVG(accuracy)
        FROM runs`,
	).Scan(&t.Played, &t.Won, &t.Lost, &t.Aborted, &avgAttempts, &avgAccuracy)
	if err != nil {
		return Totals{}, fmt.Errorf("history: totals: %w", err)
	}
	t.AvgAttempts = avgAttempts.Float64
	t.AvgAccuracy = avgAccuracy.Float64
	return t, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var r Run
	var started, finished, guesses string
	if err := sc.Scan(&r.ID, &started, &finished, &r.Model, &r.Outcome, &r.Attempts, &r.Accuracy,
		&r.Reward, &r.CorrectWord, &guesses, &r.Strategy, &r.Error); err != nil {
		return nil, err
	}
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished)
	if err := json.Unmarshal([]byte(guesses), &r.Guesses); err != nil {
		return nil, fmt.Errorf("history: decode guesses for %s: %w", r.ID, err)
	}
	return &r, nil
}

// parseTime parses stored timestamps; on error returns zero time.
func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
