// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrStoreClosed is returned by Store methods after Close.
var ErrStoreClosed = errors.New("history store is closed")

const schema = `
CREATE TABLE IF NOT EXISTS history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    command TEXT NOT NULL,
    created_at INTEGER NOT NULL -- Unix nanoseconds
);

CREATE INDEX IF NOT EXISTS idx_history_session ON history(session_id);
`

// Record is one persisted history line.
type Record struct {
	ID        int64
	SessionID string
	Command   string
	CreatedAt time.Time
}

// Store persists submitted lines across sessions in a SQLite file.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore opens or creates the database at path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Append persists one submitted line. Empty lines are ignored.
func (s *Store) Append(ctx context.Context, sessionID, command string) error {
	if command == "" {
		return nil
	}
	if s.db == nil {
		return ErrStoreClosed
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO history (session_id, command, created_at) VALUES (?, ?, ?)",
		sessionID, command, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// Recent returns up to limit of the most recent records, oldest first.
// A limit <= 0 returns everything.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, command, created_at FROM (
			SELECT id, session_id, command, created_at
			FROM history ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var created int64
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Command, &created); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		r.CreatedAt = time.Unix(0, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Load appends the most recent commands to buf, oldest first, and returns
// how many were added.
func (s *Store) Load(ctx context.Context, buf *Buffer, limit int) (int, error) {
	records, err := s.Recent(ctx, limit)
	if err != nil {
		return 0, err
	}
	for _, r := range records {
		buf.Append(r.Command)
	}
	return len(records), nil
}

// Count returns the number of persisted lines.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, ErrStoreClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM history").Scan(&n); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

// Close closes the database. Later calls are no-ops.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
