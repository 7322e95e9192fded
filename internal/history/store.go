// Package history stores a summary of every extraction run in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jackzampolin/tagsheet/internal/tags"
)

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS extraction_runs (
	id                  TEXT PRIMARY KEY,
	file_name           TEXT NOT NULL,
	page_count          INTEGER NOT NULL,
	total_tags          INTEGER NOT NULL,
	equipment_count     INTEGER NOT NULL,
	instrument_count    INTEGER NOT NULL,
	control_valve_count INTEGER NOT NULL,
	line_number_count   INTEGER NOT NULL,
	duration_ms         INTEGER NOT NULL,
	created_at          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_extraction_runs_created ON extraction_runs(created_at);
`

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// Run is the stored summary of one extraction.
type Run struct {
	ID         string       `json:"id"`
	FileName   string       `json:"file_name"`
	PageCount  int          `json:"page_count"`
	Summary    tags.Summary `json:"summary"`
	DurationMs int64        `json:"duration_ms"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Filter narrows List results.
type Filter struct {
	FileName string
	After    time.Time
	Limit    int // 0 means no limit
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a run. A zero CreatedAt is set to now.
func (s *Store) Record(ctx context.Context, r Run) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO extraction_runs (
			id, file_name, page_count, total_tags, equipment_count, instrument_count,
			control_valve_count, line_number_count, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.FileName, r.PageCount,
		r.Summary.TotalTags, r.Summary.EquipmentCount, r.Summary.InstrumentCount,
		r.Summary.ControlValveCount, r.Summary.LineNumberCount,
		r.DurationMs, r.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", r.ID, err)
	}
	return nil
}

const selectRun = `
	SELECT id, file_name, page_count, total_tags, equipment_count, instrument_count,
		control_valve_count, line_number_count, duration_ms, created_at
	FROM extraction_runs`

// Get returns a single run.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// List returns runs matching f, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Run, error) {
	var (
		where []string
		args  []any
	)
	if f.FileName != "" {
		where = append(where, "file_name = ?")
		args = append(args, f.FileName)
	}
	if !f.After.IsZero() {
		where = append(where, "created_at > ?")
		args = append(args, f.After.UTC().Format(timeLayout))
	}

	query := selectRun
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		r       Run
		created string
	)
	err := sc.Scan(
		&r.ID, &r.FileName, &r.PageCount,
		&r.Summary.TotalTags, &r.Summary.EquipmentCount, &r.Summary.InstrumentCount,
		&r.Summary.ControlValveCount, &r.Summary.LineNumberCount,
		&r.DurationMs, &created,
	)
	if err != nil {
		return nil, err
	}
	r.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at for run %s: %w", r.ID, err)
	}
	return &r, nil
}
