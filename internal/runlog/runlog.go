// Package runlog keeps a history of evaluation runs in SQLite.
package runlog

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/happyhackingspace/nertag/evaluation"
)

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("run not found")

// Run is one recorded evaluation.
type Run struct {
	ID         string
	CreatedAt  time.Time
	Reference  string
	Hypothesis string
	// Model is the model file used to produce the hypothesis, if any.
	Model    string
	Overall  evaluation.Score
	Macro    evaluation.Score
	Accuracy float64
	Scores   map[string]evaluation.Score
}

// NewRun builds a Run from an evaluation result.
func NewRun(reference, hypothesis, model string, r *evaluation.Result) Run {
	return Run{
		Reference:  reference,
		Hypothesis: hypothesis,
		Model:      model,
		Overall:    r.Scores[evaluation.Overall],
		Macro:      r.Macro,
		Accuracy:   r.Accuracy(),
		Scores:     r.Scores,
	}
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// Open opens the history database at path, creating it if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	reference TEXT NOT NULL,
	hypothesis TEXT NOT NULL,
	model TEXT,
	precision REAL NOT NULL,
	recall REAL NOT NULL,
	f1 REAL NOT NULL,
	accuracy REAL NOT NULL,
	macro_json TEXT NOT NULL,
	scores_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_reference ON runs(reference);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Record stores run and returns its new id. ID and CreatedAt of run are
// ignored.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	s.mu.Lock()
	created := s.now().UTC()
	id := ulid.MustNew(ulid.Timestamp(created), s.entropy).String()
	s.mu.Unlock()

	macro, err := json.Marshal(run.Macro)
	if err != nil {
		return "", err
	}
	scores, err := json.Marshal(run.Scores)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO runs(id, created_at, reference, hypothesis, model, precision, recall, f1, accuracy, macro_json, scores_json)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, created.Format(time.RFC3339Nano), run.Reference, run.Hypothesis, run.Model,
		run.Overall.Precision, run.Overall.Recall, run.Overall.F1, run.Accuracy,
		string(macro), string(scores))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

const selectRuns = `
SELECT id, created_at, reference, hypothesis, model, precision, recall, f1, accuracy, macro_json, scores_json
FROM runs`

// List returns up to limit runs, newest first. A limit of 0 or less returns
// every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := selectRuns + ` ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Get returns the run with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run               Run
		created           string
		model             sql.NullString
		macroJSON, scJSON string
	)
	err := sc.Scan(&run.ID, &created, &run.Reference, &run.Hypothesis, &model,
		&run.Overall.Precision, &run.Overall.Recall, &run.Overall.F1, &run.Accuracy,
		&macroJSON, &scJSON)
	if err != nil {
		return nil, err
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("run %s: created_at: %w", run.ID, err)
	}
	run.Model = model.String
	if err := json.Unmarshal([]byte(macroJSON), &run.Macro); err != nil {
		return nil, fmt.Errorf("run %s: macro: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(scJSON), &run.Scores); err != nil {
		return nil, fmt.Errorf("run %s: scores: %w", run.ID, err)
	}
	run.Overall.Support = run.Scores[evaluation.Overall].Support
	return &run, nil
}
