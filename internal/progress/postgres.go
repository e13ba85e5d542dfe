package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/darwinyusef/termsim/internal/retry"
	"github.com/darwinyusef/termsim/pkg/termsim"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS termsim_progress (
	key        text PRIMARY KEY,
	value      text NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`
	selectSQL = `SELECT value FROM termsim_progress WHERE key = $1`
	upsertSQL = `INSERT INTO termsim_progress (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteSQL = `DELETE FROM termsim_progress WHERE key = $1`
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps progress in the termsim_progress table.
// Writes are upserts, so the last write for a key wins.
type PostgresStore struct {
	db   DB
	exec *retry.Executor
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithRetry replaces the executor used for every statement.
func WithRetry(e *retry.Executor) PostgresOption {
	return func(s *PostgresStore) { s.exec = e }
}

// NewPostgresStore returns a store over db. Call EnsureSchema once before use.
func NewPostgresStore(db DB, opts ...PostgresOption) *PostgresStore {
	if db == nil {
		panic("db cannot be nil")
	}
	s := &PostgresStore{
		db: db,
		exec: retry.NewExecutor(
			retry.NewPostgresClassifier(),
			retry.NewExponentialBackoff(termsim.DefaultRetryMaxAttempts),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema creates the progress table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	return s.run(ctx, "create schema", func(ctx context.Context) error {
		_, err := s.db.Exec(ctx, createTableSQL)
		return err
	})
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.run(ctx, "get "+key, func(ctx context.Context) error {
		err := s.db.QueryRow(ctx, selectSQL, key).Scan(&value)
		if errors.Is(err, pgx.ErrNoRows) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return value, found, err
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	return s.run(ctx, "set "+key, func(ctx context.Context) error {
		_, err := s.db.Exec(ctx, upsertSQL, key, value)
		return err
	})
}

func (s *PostgresStore) Remove(ctx context.Context, key string) error {
	return s.run(ctx, "remove "+key, func(ctx context.Context) error {
		_, err := s.db.Exec(ctx, deleteSQL, key)
		return err
	})
}

func (s *PostgresStore) run(ctx context.Context, what string, op func(context.Context) error) error {
	if err := s.exec.Execute(ctx, op); err != nil {
		return fmt.Errorf("%w: %s: %w", termsim.ErrProgressStore, what, err)
	}
	return nil
}
