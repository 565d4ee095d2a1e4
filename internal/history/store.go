package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump on schema changes; users
// delete the database to upgrade.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// bookbinder version.
var ErrSchemaMismatch = errors.New("history schema version mismatch")

// Status classifies the outcome of one merge run.
type Status string

const (
	StatusCompleted        Status = "completed"
	StatusFallbackRequired Status = "fallback_required"
	StatusNoAudio          Status = "no_audio"
	StatusFailed           Status = "failed"
)

// Run is one recorded merge invocation.
type Run struct {
	ID           string
	SourceDir    string
	OutputPath   string
	Status       Status
	PartCount    int
	FrameCount   int
	StreamBytes  int64
	GarbageBytes int64
	SuspectParts int
	DurationMs   int64
	Detail       string
	CreatedAt    time.Time
}

// Store persists merge run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// Record inserts a run, assigning its ID and timestamp, and returns the
// stored value.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	run.ID = uuid.NewString()
	run.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO merge_runs (
            id, source_dir, output_path, status, part_count, frame_count,
            stream_bytes, garbage_bytes, suspect_parts, duration_ms, detail, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.SourceDir,
		nullableString(run.OutputPath),
		string(run.Status),
		run.PartCount,
		run.FrameCount,
		run.StreamBytes,
		run.GarbageBytes,
		run.SuspectParts,
		run.DurationMs,
		nullableString(run.Detail),
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert merge run: %w", err)
	}
	return run, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_dir, output_path, status, part_count, frame_count,
                stream_bytes, garbage_bytes, suspect_parts, duration_ms, detail, created_at
           FROM merge_runs
          ORDER BY created_at DESC
          LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query merge runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			outputPath sql.NullString
			detail     sql.NullString
			status     string
			createdAt  string
		)
		if err := rows.Scan(
			&run.ID, &run.SourceDir, &outputPath, &status,
			&run.PartCount, &run.FrameCount, &run.StreamBytes,
			&run.GarbageBytes, &run.SuspectParts, &run.DurationMs,
			&detail, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan merge run: %w", err)
		}
		run.Status = Status(status)
		run.OutputPath = outputPath.String
		run.Detail = detail.String
		if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			run.CreatedAt = parsed
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate merge runs: %w", err)
	}
	return runs, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
