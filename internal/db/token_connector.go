package db

import (
	"context"
	"fmt"
	"time"

	"github.com/darwinyusef/termsim/internal/retry"
	"github.com/darwinyusef/termsim/pkg/termsim"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// tokenExpiryWarning is how close to expiry a fresh token must be before
// the connector logs a warning.
const tokenExpiryWarning = 5 * time.Minute

// TokenConnector authenticates with tokens from a TokenProvider (AWS IAM,
// Azure Entra ID). A fresh token is fetched for every new physical
// connection, so a long-lived pool outlives any single token.
type TokenConnector struct {
	config   *termsim.DatabaseConfig
	provider TokenProvider
	logger   termsim.Logger
	exec     *retry.Executor
}

// NewTokenConnector returns a connector that uses provider for passwords.
func NewTokenConnector(cfg *termsim.DatabaseConfig, provider TokenProvider, logger termsim.Logger) *TokenConnector {
	if provider == nil {
		panic("token provider cannot be nil")
	}
	return &TokenConnector{config: cfg, provider: provider, logger: logger, exec: newExecutor(logger)}
}

// Connect opens a pool.
func (c *TokenConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := c.poolConfig()
	if err != nil {
		return nil, err
	}
	return openPool(ctx, c.exec, cfg)
}

func (c *TokenConnector) poolConfig() (*pgxpool.Config, error) {
	cfg, err := parsePoolConfig(c.config.DSN, c.logger)
	if err != nil {
		return nil, err
	}
	cfg.BeforeConnect = func(ctx context.Context, cc *pgx.ConnConfig) error {
		token, expiresOn, err := c.provider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("%w: acquire token from %s: %w", termsim.ErrConnectionFailed, c.provider, err)
		}
		if left := time.Until(expiresOn); left < tokenExpiryWarning {
			c.logger.Info("Warning: %s token expires in %s", c.provider, left.Round(time.Second))
		}
		cc.Password = token
		return nil
	}
	return cfg, nil
}
