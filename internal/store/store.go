// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilkkao/taito/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for player state and session history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS best_times (
			mode TEXT NOT NULL,
			levels TEXT NOT NULL,
			time_ms INTEGER NOT NULL,
			PRIMARY KEY (mode, levels)
		);`,
		`CREATE TABLE IF NOT EXISTS unlocked_modes (
			mode TEXT PRIMARY KEY
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			mode TEXT NOT NULL,
			levels TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			time_ms INTEGER NOT NULL,
			wrong_count INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			questions INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ListBestTimes returns all best-time records ordered by mode and levels.
func (s *Store) ListBestTimes(ctx context.Context) ([]model.BestTime, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT mode, levels, time_ms FROM best_times ORDER BY mode, levels`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.BestTime
	for rows.Next() {
		var mode, levels string
		var timeMs int64
		if err := rows.Scan(&mode, &levels, &timeMs); err != nil {
			return nil, err
		}
		entries = append(entries, model.BestTime{
			Mode:   model.Mode(mode),
			Levels: splitLevels(levels),
			TimeMs: timeMs,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// UpsertBestTime writes a best-time record, replacing any existing entry
// for the same (mode, levels) key.
func (s *Store) UpsertBestTime(ctx context.Context, entry model.BestTime) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO best_times (mode, levels, time_ms) VALUES (?, ?, ?)
		 ON CONFLICT (mode, levels) DO UPDATE SET time_ms = excluded.time_ms`,
		string(entry.Mode), model.LevelKey(entry.Levels), entry.TimeMs)
	return err
}

// ListUnlocked returns the persisted unlocked modes.
func (s *Store) ListUnlocked(ctx context.Context) ([]model.Mode, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT mode FROM unlocked_modes`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var modes []model.Mode
	for rows.Next() {
		var mode string
		if err := rows.Scan(&mode); err != nil {
			return nil, err
		}
		modes = append(modes, model.Mode(mode))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return modes, nil
}

// InsertUnlock marks a mode as unlocked. Already-unlocked modes are kept.
func (s *Store) InsertUnlock(ctx context.Context, mode model.Mode) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO unlocked_modes (mode) VALUES (?)`, string(mode))
	return err
}

// InsertSession appends one session record to the history.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (mode, levels, ended_at, time_ms, wrong_count, accuracy, questions)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(rec.Mode),
		model.LevelKey(rec.Levels),
		rec.EndedAt.Format(time.RFC3339Nano),
		rec.TimeMs,
		rec.WrongCount,
		rec.Accuracy,
		rec.Questions,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSessions returns the most recent session records in chronological
// order. A limit of zero means all.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]model.SessionRecord, error) {
	query := `SELECT id, mode, levels, ended_at, time_ms, wrong_count, accuracy, questions
		FROM sessions ORDER BY ended_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.SessionRecord
	for rows.Next() {
		var rec model.SessionRecord
		var mode, levels, endedAt string
		if err := rows.Scan(&rec.ID, &mode, &levels, &endedAt, &rec.TimeMs, &rec.WrongCount, &rec.Accuracy, &rec.Questions); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		rec.Mode = model.Mode(mode)
		rec.Levels = splitLevels(levels)
		rec.EndedAt = parsed
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Reverse to chronological order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Reset clears best times, unlocks, and session history.
func (s *Store) Reset(ctx context.Context) error {
	for _, stmt := range []string{
		`DELETE FROM best_times`,
		`DELETE FROM unlocked_modes`,
		`DELETE FROM sessions`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func splitLevels(levels string) []string {
	if levels == "" {
		return nil
	}
	return strings.Split(levels, ",")
}
