// Package pushlog keeps the push events reported by a hosting service in a
// SQLite database, and answers the earliest reported push of every commit.
package pushlog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/odvcencio/pushdate/pkg/object"
)

//go:embed schema.sql
var schemaSQL string

var ErrInvalidEvent = errors.New("invalid push event")

// Event is one reported push of a commit.
type Event struct {
	ID         string
	Repository string
	Commit     object.Hash
	Ref        string
	PushedAt   time.Time
	Source     string
}

func (e Event) validate() error {
	switch {
	case strings.TrimSpace(e.Repository) == "":
		return fmt.Errorf("%w: repository is required", ErrInvalidEvent)
	case strings.TrimSpace(string(e.Commit)) == "":
		return fmt.Errorf("%w: commit is required", ErrInvalidEvent)
	case e.PushedAt.IsZero():
		return fmt.Errorf("%w: push time of %s is required", ErrInvalidEvent, e.Commit)
	}
	return nil
}

// Log is a push log backed by SQLite in WAL mode.
type Log struct {
	db *sql.DB
}

// Open creates or opens the push log at path and applies the schema.
// Missing parent directories are created.
func Open(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("pushlog: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("pushlog: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pushlog: connect %s: %w", path, err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pushlog: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("pushlog: apply schema: %w", err)
	}
	return &Log{db: db}, nil
}

// Close closes the database.
func (l *Log) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Record stores e and returns its id. An empty id is replaced by a fresh
// UUIDv7. Recording an id twice is a no-op.
func (l *Log) Record(ctx context.Context, e Event) (string, error) {
	ids, err := l.RecordBatch(ctx, []Event{e})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// RecordBatch stores events in a single transaction and returns their ids
// in order. Either every event is stored or none is.
func (l *Log) RecordBatch(ctx context.Context, events []Event) ([]string, error) {
	ids := make([]string, len(events))
	for i, e := range events {
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("pushlog: event %d: %w", i, err)
		}
		ids[i] = e.ID
		if ids[i] == "" {
			ids[i] = uuid.Must(uuid.NewV7()).String()
		}
	}
	if len(events) == 0 {
		return ids, nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("pushlog: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pushes (id, repository, commit_hash, ref, pushed_at, source)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return nil, fmt.Errorf("pushlog: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range events {
		if _, err := stmt.ExecContext(ctx,
			ids[i],
			e.Repository,
			string(e.Commit),
			e.Ref,
			e.PushedAt.UnixNano(),
			e.Source,
		); err != nil {
			return nil, fmt.Errorf("pushlog: insert %s: %w", e.Commit, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("pushlog: commit: %w", err)
	}
	return ids, nil
}

// AddCommits records commits as members of repository. Adding a member
// twice is a no-op.
func (l *Log) AddCommits(ctx context.Context, repository string, commits []object.Hash) error {
	if strings.TrimSpace(repository) == "" {
		return fmt.Errorf("pushlog: %w: repository is required", ErrInvalidEvent)
	}
	if len(commits) == 0 {
		return nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pushlog: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO commits (repository, commit_hash)
		VALUES (?, ?)
		ON CONFLICT(repository, commit_hash) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("pushlog: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range commits {
		if strings.TrimSpace(string(c)) == "" {
			return fmt.Errorf("pushlog: %w: commit is required", ErrInvalidEvent)
		}
		if _, err := stmt.ExecContext(ctx, repository, string(c)); err != nil {
			return fmt.Errorf("pushlog: insert member %s: %w", c, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pushlog: commit: %w", err)
	}
	return nil
}

// Commits returns every commit known to belong to repository, sorted: the
// recorded members and every commit with a recorded push.
func (l *Log) Commits(ctx context.Context, repository string) ([]object.Hash, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT commit_hash FROM commits WHERE repository = ?
		UNION
		SELECT commit_hash FROM pushes WHERE repository = ?
		ORDER BY commit_hash
	`, repository, repository)
	if err != nil {
		return nil, fmt.Errorf("pushlog: query commits: %w", err)
	}
	defer rows.Close()

	var out []object.Hash
	for rows.Next() {
		var commit string
		if err := rows.Scan(&commit); err != nil {
			return nil, fmt.Errorf("pushlog: scan commit: %w", err)
		}
		out = append(out, object.Hash(commit))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pushlog: query commits: %w", err)
	}
	return out, nil
}

// Reported returns the earliest recorded push of every commit of
// repository.
func (l *Log) Reported(ctx context.Context, repository string) (map[object.Hash]time.Time, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT commit_hash, MIN(pushed_at)
		FROM pushes
		WHERE repository = ?
		GROUP BY commit_hash
	`, repository)
	if err != nil {
		return nil, fmt.Errorf("pushlog: query reported: %w", err)
	}
	defer rows.Close()

	out := make(map[object.Hash]time.Time)
	for rows.Next() {
		var (
			commit string
			nanos  int64
		)
		if err := rows.Scan(&commit, &nanos); err != nil {
			return nil, fmt.Errorf("pushlog: scan reported: %w", err)
		}
		out[object.Hash(commit)] = time.Unix(0, nanos).UTC()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pushlog: query reported: %w", err)
	}
	return out, nil
}

// Events returns every recorded push of commit in repository, earliest
// first.
func (l *Log) Events(ctx context.Context, repository string, commit object.Hash) ([]Event, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, ref, pushed_at, source
		FROM pushes
		WHERE repository = ? AND commit_hash = ?
		ORDER BY pushed_at, id
	`, repository, string(commit))
	if err != nil {
		return nil, fmt.Errorf("pushlog: query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e := Event{Repository: repository, Commit: commit}
		var nanos int64
		if err := rows.Scan(&e.ID, &e.Ref, &nanos, &e.Source); err != nil {
			return nil, fmt.Errorf("pushlog: scan event: %w", err)
		}
		e.PushedAt = time.Unix(0, nanos).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pushlog: query events: %w", err)
	}
	return out, nil
}
