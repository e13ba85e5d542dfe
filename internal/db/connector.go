// Package db opens connection pools to the Postgres progress store using
// password, AWS RDS IAM, Azure Entra ID or Google Cloud SQL IAM
// authentication.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/darwinyusef/termsim/internal/retry"
	"github.com/darwinyusef/termsim/pkg/termsim"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool sizing for a store that issues one short statement per step.
const (
	DefaultMaxConns        = 4
	DefaultMinConns        = 0
	DefaultMaxConnIdleTime = 5 * time.Minute
)

func parsePoolConfig(dsn string, logger termsim.Logger) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: parse dsn: %w", termsim.ErrInvalidConfig, err)
	}
	cfg.MaxConns = DefaultMaxConns
	cfg.MinConns = DefaultMinConns
	cfg.MaxConnIdleTime = DefaultMaxConnIdleTime
	cfg.ConnConfig.OnNotice = func(_ *pgconn.PgConn, n *pgconn.Notice) {
		logger.Verbose("postgres %s: %s", strings.ToLower(n.Severity), n.Message)
	}
	return cfg, nil
}

func newExecutor(logger termsim.Logger) *retry.Executor {
	strategy := retry.NewExponentialBackoff(termsim.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(termsim.DefaultRetryInitialDelay),
		retry.WithMaxDelay(termsim.DefaultRetryMaxDelay),
	)
	return retry.NewExecutor(retry.NewPostgresClassifier(), strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Verbose("Connection attempt %d failed: %v (retrying in %s)", attempt+1, err, delay.Round(time.Millisecond))
		})
}

// openPool creates and pings a pool, retrying transient failures.
func openPool(ctx context.Context, exec *retry.Executor, cfg *pgxpool.Config) (*pgxpool.Pool, error) {
	return retry.Do(ctx, exec, func(ctx context.Context) (*pgxpool.Pool, error) {
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, wrapConnectionError(err, cfg.ConnConfig.Host, cfg.ConnConfig.Port, cfg.ConnConfig.Database)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, wrapConnectionError(err, cfg.ConnConfig.Host, cfg.ConnConfig.Port, cfg.ConnConfig.Database)
		}
		return pool, nil
	})
}

// StandardConnector authenticates with the password in the DSN or the
// usual libpq environment variables.
type StandardConnector struct {
	config *termsim.DatabaseConfig
	logger termsim.Logger
	exec   *retry.Executor
}

// NewStandardConnector returns a connector for cfg.
func NewStandardConnector(cfg *termsim.DatabaseConfig, logger termsim.Logger) *StandardConnector {
	return &StandardConnector{config: cfg, logger: logger, exec: newExecutor(logger)}
}

// Connect opens a pool.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := parsePoolConfig(c.config.DSN, c.logger)
	if err != nil {
		return nil, err
	}
	return openPool(ctx, c.exec, cfg)
}

// NewConnector picks the connector for cfg.AuthMethod.
func NewConnector(cfg *termsim.DatabaseConfig, logger termsim.Logger) (termsim.Connector, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: database config is required", termsim.ErrInvalidConfig)
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.AuthMethod {
	case termsim.AuthMethodStandard:
		return NewStandardConnector(cfg, logger), nil
	case termsim.AuthMethodAWSIAM:
		return newAWSConnector(cfg, logger)
	case termsim.AuthMethodGoogleIAM:
		return NewGoogleCloudSQLConnector(cfg, logger), nil
	case termsim.AuthMethodAzureEntraID:
		return newAzureConnector(cfg, logger)
	default:
		return nil, fmt.Errorf("auth method %v: %w", cfg.AuthMethod, termsim.ErrUnsupportedAuthMethod)
	}
}

func newAWSConnector(cfg *termsim.DatabaseConfig, logger termsim.Logger) (termsim.Connector, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: parse dsn: %w", termsim.ErrInvalidConfig, err)
	}
	endpoint := fmt.Sprintf("%s:%d", pc.ConnConfig.Host, pc.ConnConfig.Port)

	provider, err := NewAWSIAMTokenProvider(endpoint, cfg.AWSRegion, pc.ConnConfig.User)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", termsim.ErrInvalidConfig, err)
	}
	return NewTokenConnector(cfg, provider, logger), nil
}

func newAzureConnector(cfg *termsim.DatabaseConfig, logger termsim.Logger) (termsim.Connector, error) {
	var (
		provider TokenProvider
		err      error
	)
	if cfg.AzureTenantID != "" && cfg.AzureClientID != "" && cfg.AzureClientSecret != "" {
		provider, err = NewAzureServicePrincipalProvider(cfg.AzureTenantID, cfg.AzureClientID, cfg.AzureClientSecret)
	} else {
		provider, err = NewAzureDefaultCredentialProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", termsim.ErrInvalidConfig, err)
	}
	return NewTokenConnector(cfg, provider, logger), nil
}

// wrapConnectionError adds a hint for the common failure causes and marks
// the error as a connection failure.
func wrapConnectionError(err error, host string, port uint16, database string) error {
	msg := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var hint string
	switch {
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "actively refused"):
		hint = fmt.Sprintf("connection refused by %s; is PostgreSQL running (pg_isready -h %s -p %d)?", addr, host, port)
	case strings.Contains(msg, "no such host"):
		hint = fmt.Sprintf("cannot resolve host %q", host)
	case strings.Contains(msg, "password authentication failed"):
		hint = fmt.Sprintf("password authentication failed for database %q; check the dsn or PGPASSWORD", database)
	case strings.Contains(msg, "does not exist"):
		hint = fmt.Sprintf("database %q does not exist; create it with: createdb %s", database, database)
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		hint = fmt.Sprintf("connection to %s timed out", addr)
	case strings.Contains(msg, "too many connections"):
		hint = fmt.Sprintf("too many connections to database %q", database)
	default:
		return fmt.Errorf("%w: %w", termsim.ErrConnectionFailed, err)
	}
	return fmt.Errorf("%w: %s: %w", termsim.ErrConnectionFailed, hint, err)
}
