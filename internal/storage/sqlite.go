package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS blobs (
	key        TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	version    TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore keeps objects in a local SQLite file.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens (creating if needed) a SQLite store at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Writers must not interleave; one connection serializes them.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create blobs table: %w", err)
	}

	return &SQLiteStore{sqlDB: sqlDB}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (Object, error) {
	var obj Object
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT data, version FROM blobs WHERE key = ?`, key,
	).Scan(&obj.Data, &obj.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return Object{}, ErrNotFound
	}
	if err != nil {
		return Object{}, fmt.Errorf("select blob %q: %w", key, err)
	}
	return obj, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, data []byte, cond Precondition) (string, error) {
	version := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var (
		res sql.Result
		err error
	)
	switch {
	case cond.Unconditional():
		res, err = s.sqlDB.ExecContext(ctx, `
			INSERT INTO blobs (key, data, version, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (key) DO UPDATE
			SET data = excluded.data, version = excluded.version, updated_at = excluded.updated_at`,
			key, data, version, now)
	case cond.Version() == "":
		res, err = s.sqlDB.ExecContext(ctx, `
			INSERT INTO blobs (key, data, version, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (key) DO NOTHING`,
			key, data, version, now)
	default:
		res, err = s.sqlDB.ExecContext(ctx, `
			UPDATE blobs SET data = ?, version = ?, updated_at = ?
			WHERE key = ? AND version = ?`,
			data, version, now, key, cond.Version())
	}
	if err != nil {
		return "", fmt.Errorf("write blob %q: %w", key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("write blob %q: %w", key, err)
	}
	if n == 0 {
		return "", ErrConflict
	}
	return version, nil
}

// Close closes the underlying SQLite database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

var _ Store = (*SQLiteStore)(nil)
