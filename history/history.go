// ABOUTME: SQLite-backed build history so the dev server and TUI can show recent runs.
// ABOUTME: Stores one row per bundler invocation keyed by a time-sortable ULID.
package history

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

// Build statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Build triggers.
const (
	TriggerManual  = "manual"  // flowviz build
	TriggerWatch   = "watch"   // a debounced change batch
	TriggerInitial = "initial" // the startup build of watch/dev
)

// Build is one recorded bundler run.
type Build struct {
	ID        string        `json:"build_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"-"`
	Status    string        `json:"status"`
	Trigger   string        `json:"trigger"`
	Outfile   string        `json:"outfile"`
	Changed   int           `json:"changed"`
	Error     string        `json:"error,omitempty"`

	// DurationMS mirrors Duration for the JSON API.
	DurationMS int64 `json:"duration_ms"`
}

// NewBuildID generates a ULID build ID using crypto/rand entropy. ULIDs sort
// by creation time, which the store relies on for newest-first queries.
func NewBuildID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// Store is a SQLite-backed build history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// "trigger" is an SQLite keyword, so the column stays quoted everywhere.
	schema := `
		CREATE TABLE IF NOT EXISTS builds (
			build_id    TEXT PRIMARY KEY,
			started_at  TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			status      TEXT NOT NULL,
			"trigger"   TEXT NOT NULL,
			outfile     TEXT NOT NULL,
			changed     INTEGER NOT NULL,
			error       TEXT NOT NULL DEFAULT ''
		);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record upserts one build row. An empty ID gets a fresh ULID so callers can
// pass a bare Build.
func (s *Store) Record(b *Build) error {
	if b.ID == "" {
		b.ID = NewBuildID()
	}
	if b.Status == "" {
		return fmt.Errorf("build %s has no status", b.ID)
	}

	_, err := s.db.Exec(
		`INSERT INTO builds (build_id, started_at, duration_ms, status, "trigger", outfile, changed, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(build_id) DO UPDATE SET
			started_at = excluded.started_at,
			duration_ms = excluded.duration_ms,
			status = excluded.status,
			"trigger" = excluded."trigger",
			outfile = excluded.outfile,
			changed = excluded.changed,
			error = excluded.error`,
		b.ID,
		b.StartedAt.UTC().Format(time.RFC3339Nano),
		b.Duration.Milliseconds(),
		b.Status,
		b.Trigger,
		b.Outfile,
		b.Changed,
		b.Error,
	)
	if err != nil {
		return fmt.Errorf("upsert build: %w", err)
	}
	return nil
}

// List returns up to limit builds, newest first. A non-positive limit returns
// everything.
func (s *Store) List(limit int) ([]Build, error) {
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT means no limit
	}

	rows, err := s.db.Query(
		`SELECT build_id, started_at, duration_ms, status, "trigger", outfile, changed, error
		 FROM builds ORDER BY build_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var builds []Build
	for rows.Next() {
		var b Build
		var startedAt string
		var durationMS int64
		if err := rows.Scan(&b.ID, &startedAt, &durationMS, &b.Status, &b.Trigger,
			&b.Outfile, &b.Changed, &b.Error); err != nil {
			return nil, fmt.Errorf("scan build row: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", startedAt, err)
		}
		b.StartedAt = t
		b.Duration = time.Duration(durationMS) * time.Millisecond
		b.DurationMS = durationMS
		builds = append(builds, b)
	}
	return builds, rows.Err()
}

// Latest returns the most recent build, or ok=false when the history is empty.
func (s *Store) Latest() (*Build, bool, error) {
	builds, err := s.List(1)
	if err != nil {
		return nil, false, err
	}
	if len(builds) == 0 {
		return nil, false, nil
	}
	return &builds[0], true, nil
}

// Count returns the number of recorded builds.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM builds").Scan(&n); err != nil {
		return 0, fmt.Errorf("count builds: %w", err)
	}
	return n, nil
}

// Prune deletes all but the newest keep builds. keep <= 0 clears the history.
func (s *Store) Prune(keep int) error {
	if keep <= 0 {
		if _, err := s.db.Exec("DELETE FROM builds"); err != nil {
			return fmt.Errorf("clear builds: %w", err)
		}
		return nil
	}

	_, err := s.db.Exec(
		`DELETE FROM builds WHERE build_id NOT IN
			(SELECT build_id FROM builds ORDER BY build_id DESC LIMIT ?)`, keep)
	if err != nil {
		return fmt.Errorf("prune builds: %w", err)
	}
	return nil
}
