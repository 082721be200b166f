package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gridscope/gridscope/pkg/types"
	"github.com/levenlabs/go-lflag"

	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO required
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS preferences (
    user_id TEXT PRIMARY KEY,
    json TEXT NOT NULL,
    version INTEGER NOT NULL DEFAULT 0,
    updated_at INTEGER NOT NULL
);
`

// SQLiteDatabase implements Database using a local SQLite file. This is the
// default backend for self-hosted single-instance deployments.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// configuredSQLite sets up the SQLite provider.
// It registers flags for configuration.
func configuredSQLite() *SQLiteDatabase {
	path := lflag.String("sqlite-path", "gridscope.db", "Path to the SQLite database file")

	s := &SQLiteDatabase{}
	lflag.Do(func() {
		s.path = *path
	})
	return s
}

// NewSQLite creates a SQLite database at the given path, bypassing flag
// registration. Used by tests.
func NewSQLite(path string) (*SQLiteDatabase, error) {
	s := &SQLiteDatabase{path: path}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

// Init opens the database file and applies the schema.
func (s *SQLiteDatabase) Init() error {
	if s.path == "" {
		return fmt.Errorf("sqlite-path is required")
	}
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal=WAL&_sync=NORMAL&_busy_timeout=5000", s.path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite (%s): %w", s.path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	s.db = db
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetPreferences retrieves a user's preferences row.
func (s *SQLiteDatabase) GetPreferences(ctx context.Context, userID string) (types.Preferences, int, error) {
	if userID == "" {
		return types.Preferences{}, 0, fmt.Errorf("userID cannot be empty")
	}

	var jsonStr string
	var version int
	err := s.db.QueryRowContext(ctx,
		`SELECT json, version FROM preferences WHERE user_id = ?`, userID,
	).Scan(&jsonStr, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Preferences{}, 0, ErrNotFound
	}
	if err != nil {
		return types.Preferences{}, 0, fmt.Errorf("failed to query preferences: %w", err)
	}

	var p types.Preferences
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		return types.Preferences{}, 0, fmt.Errorf("failed to unmarshal preferences json: %w", err)
	}
	return p, version, nil
}

// SetPreferences upserts a user's preferences row.
func (s *SQLiteDatabase) SetPreferences(ctx context.Context, userID string, prefs types.Preferences, version int) error {
	if userID == "" {
		return fmt.Errorf("userID cannot be empty")
	}
	jsonBytes, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO preferences (user_id, json, version, updated_at)
		VALUES (?, ?, ?, unixepoch())
		ON CONFLICT(user_id) DO UPDATE SET
			json = excluded.json,
			version = excluded.version,
			updated_at = excluded.updated_at`,
		userID, string(jsonBytes), version)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// ListUsers returns the ids of all users with stored preferences.
func (s *SQLiteDatabase) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM preferences ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return userIDs, nil
}
