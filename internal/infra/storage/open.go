// Package storage selects and opens row engines from configuration. The
// durable drivers share one database handle across every schema wrapped
// through the same provider.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tcat-tamu/trc-sub000/internal/config"
	"github.com/tcat-tamu/trc-sub000/internal/infra/storage/memory"
	"github.com/tcat-tamu/trc-sub000/internal/infra/storage/postgres"
	"github.com/tcat-tamu/trc-sub000/internal/infra/storage/sqlite"
	"github.com/tcat-tamu/trc-sub000/pkg/repo"
)

// Driver identifies a concrete row engine implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
)

// Provider hands out engines over a shared backend connection.
type Provider struct {
	driver Driver
	db     *sql.DB
}

// Open validates the configured driver and, for durable drivers, opens the
// shared database handle.
func Open(ctx context.Context, cfg config.Config) (*Provider, error) {
	switch Driver(cfg.StorageDriver) {
	case DriverMemory:
		return &Provider{driver: DriverMemory}, nil
	case DriverSQLite:
		db, err := sqlite.OpenDB(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Provider{driver: DriverSQLite, db: db}, nil
	case DriverPostgres:
		dsn := cfg.PostgresDSN
		if dsn == "" {
			dsn = "postgres://localhost/trc?sslmode=disable"
		}
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return &Provider{driver: DriverPostgres, db: db}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.StorageDriver)
	}
}

// Driver returns the provider's driver.
func (p *Provider) Driver() Driver { return p.driver }

// Engine builds a row engine for the schema over the shared backend.
func (p *Provider) Engine(ctx context.Context, schema *repo.Schema) (repo.Engine, error) {
	switch p.driver {
	case DriverMemory:
		return memory.New(schema), nil
	case DriverSQLite:
		return sqlite.Wrap(p.db, schema)
	case DriverPostgres:
		return postgres.Wrap(ctx, p.db, schema)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", p.driver)
	}
}

// Close releases the shared connection, if any.
func (p *Provider) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}
