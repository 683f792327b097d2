// Package usage keeps a SQLite log of completed generation turns so
// token throughput can be reviewed later with the usage command.
// Recording is best-effort; a failed write never aborts a chat turn.
package usage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS turns (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    model TEXT NOT NULL,
    prompt_tokens INTEGER NOT NULL DEFAULT 0,
    eval_tokens INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_turns_created_at ON turns(created_at DESC);
`

// Turn is one completed generation.
type Turn struct {
	Model        string
	PromptTokens int
	EvalTokens   int
	Duration     time.Duration
	CreatedAt    time.Time
}

// ModelUsage aggregates turns per model.
type ModelUsage struct {
	Model         string
	Turns         int
	PromptTokens  int
	EvalTokens    int
	TotalDuration time.Duration
}

// Store is the SQLite-backed turn log.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the usage database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open usage database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize usage schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record inserts one completed turn.
func (s *Store) Record(ctx context.Context, t Turn) error {
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (model, prompt_tokens, eval_tokens, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		t.Model, t.PromptTokens, t.EvalTokens, t.Duration.Milliseconds(), createdAt.UTC())
	if err != nil {
		return fmt.Errorf("record turn: %w", err)
	}
	return nil
}

// Summary aggregates turns per model over the last N days; days <= 0
// covers everything. Models are ordered by generated token count.
func (s *Store) Summary(ctx context.Context, days int) ([]ModelUsage, error) {
	query := `SELECT model, COUNT(*), SUM(prompt_tokens), SUM(eval_tokens), SUM(duration_ms)
	          FROM turns`
	var args []any
	if days > 0 {
		query += ` WHERE created_at >= ?`
		args = append(args, time.Now().UTC().AddDate(0, 0, -days))
	}
	query += ` GROUP BY model ORDER BY SUM(eval_tokens) DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	var out []ModelUsage
	for rows.Next() {
		var m ModelUsage
		var durationMS int64
		if err := rows.Scan(&m.Model, &m.Turns, &m.PromptTokens, &m.EvalTokens, &durationMS); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		m.TotalDuration = time.Duration(durationMS) * time.Millisecond
		out = append(out, m)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
