package progress

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/darwinyusef/termsim/internal/db"
	"github.com/darwinyusef/termsim/pkg/termsim"
)

// Store kinds accepted by Open.
const (
	KindMemory   = "memory"
	KindFile     = "file"
	KindPostgres = "postgres"
)

// Options selects and configures a store.
type Options struct {
	// Kind is KindMemory, KindFile or KindPostgres. Empty means KindFile.
	Kind string
	// Path is the FileStore location. Empty means DefaultPath().
	Path string
	// Database is required for KindPostgres.
	Database *termsim.DatabaseConfig
}

// Open builds the store described by opts. The returned close function
// releases any connections and is never nil.
func Open(ctx context.Context, opts Options, logger termsim.Logger) (termsim.ProgressStore, func(), error) {
	noop := func() {}

	switch strings.ToLower(opts.Kind) {
	case KindMemory:
		return NewMemoryStore(), noop, nil

	case "", KindFile:
		path := opts.Path
		if path == "" {
			p, err := DefaultPath()
			if err != nil {
				return nil, noop, err
			}
			path = p
		}
		return NewFileStore(path), noop, nil

	case KindPostgres:
		connector, err := db.NewConnector(opts.Database, logger)
		if err != nil {
			return nil, noop, err
		}
		pool, err := connector.Connect(ctx)
		if err != nil {
			return nil, noop, err
		}
		closeAll := func() {
			pool.Close()
			if c, ok := connector.(io.Closer); ok {
				if err := c.Close(); err != nil {
					logger.Error("Failed to close connector: %v", err)
				}
			}
		}

		store := NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			closeAll()
			return nil, noop, err
		}
		logger.Verbose("Progress stored in PostgreSQL (%s)", opts.Database.AuthMethod)
		return store, closeAll, nil

	default:
		return nil, noop, fmt.Errorf("%w: unknown progress store %q (want memory, file or postgres)", termsim.ErrInvalidConfig, opts.Kind)
	}
}
