package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx used by PostgresStore.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS blobs (
	key        TEXT PRIMARY KEY,
	data       BYTEA NOT NULL,
	version    UUID NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps objects as rows of the blobs table. Each write
// stamps a fresh UUID version.
type PostgresStore struct {
	db   DBTX
	pool *pgxpool.Pool
}

// OpenPostgres connects to databaseURL, verifies the connection and
// ensures the blobs table exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{db: pool, pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the blobs table if it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("create blobs table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (Object, error) {
	var obj Object
	err := s.db.QueryRow(ctx,
		`SELECT data, version::text FROM blobs WHERE key = $1`, key,
	).Scan(&obj.Data, &obj.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return Object{}, ErrNotFound
	}
	if err != nil {
		return Object{}, fmt.Errorf("select blob %q: %w", key, err)
	}
	return obj, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, data []byte, cond Precondition) (string, error) {
	version := uuid.New()

	var (
		tag pgconn.CommandTag
		err error
	)
	switch {
	case cond.Unconditional():
		tag, err = s.db.Exec(ctx, `
			INSERT INTO blobs (key, data, version, updated_at) VALUES ($1, $2, $3, now())
			ON CONFLICT (key) DO UPDATE
			SET data = EXCLUDED.data, version = EXCLUDED.version, updated_at = now()`,
			key, data, version)
	case cond.Version() == "":
		tag, err = s.db.Exec(ctx, `
			INSERT INTO blobs (key, data, version, updated_at) VALUES ($1, $2, $3, now())
			ON CONFLICT (key) DO NOTHING`,
			key, data, version)
	default:
		expected, perr := uuid.Parse(cond.Version())
		if perr != nil {
			return "", ErrConflict
		}
		tag, err = s.db.Exec(ctx, `
			UPDATE blobs SET data = $2, version = $3, updated_at = now()
			WHERE key = $1 AND version = $4`,
			key, data, version, expected)
	}
	if err != nil {
		return "", fmt.Errorf("write blob %q: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return "", ErrConflict
	}

	return version.String(), nil
}

// Close closes the pool when the store owns it.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
