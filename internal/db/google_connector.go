package db

import (
	"context"
	"fmt"
	"net"
	"sync"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/darwinyusef/termsim/pkg/termsim"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GoogleCloudSQLConnector reaches Cloud SQL through the Cloud SQL Go
// connector with IAM database authentication. The DSN supplies the user and
// database; the host is replaced by the instance connection name.
//
// Close must be called after the returned pool is closed.
type GoogleCloudSQLConnector struct {
	config *termsim.DatabaseConfig
	logger termsim.Logger

	mu     sync.Mutex
	dialer *cloudsqlconn.Dialer
}

// NewGoogleCloudSQLConnector returns a connector for cfg.GoogleInstance.
func NewGoogleCloudSQLConnector(cfg *termsim.DatabaseConfig, logger termsim.Logger) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{config: cfg, logger: logger}
}

// Connect opens a pool dialing through Cloud SQL.
func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := parsePoolConfig(c.config.DSN, c.logger)
	if err != nil {
		return nil, err
	}
	if cfg.ConnConfig.User == "" {
		return nil, fmt.Errorf("%w: google iam auth requires a user in the dsn", termsim.ErrInvalidConfig)
	}

	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("%w: create cloud sql dialer: %w", termsim.ErrConnectionFailed, err)
	}

	instance := c.config.GoogleInstance
	cfg.ConnConfig.Host = instance
	cfg.ConnConfig.TLSConfig = nil
	cfg.ConnConfig.Fallbacks = nil
	cfg.ConnConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, instance)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		dialer.Close()
		return nil, wrapConnectionError(err, instance, cfg.ConnConfig.Port, cfg.ConnConfig.Database)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		dialer.Close()
		return nil, wrapConnectionError(err, instance, cfg.ConnConfig.Port, cfg.ConnConfig.Database)
	}

	c.mu.Lock()
	c.dialer = dialer
	c.mu.Unlock()
	return pool, nil
}

// Close releases the dialer.
func (c *GoogleCloudSQLConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialer != nil {
		err := c.dialer.Close()
		c.dialer = nil
		return err
	}
	return nil
}
