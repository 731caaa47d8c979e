// Package database opens the storage the cast service runs on and keeps it
// together for the lifetime of the process.
//
// A Database is created once at startup and handed to whatever needs it;
// there is no package-level instance. Close it at shutdown.
package database

import (
	"context"
	"fmt"

	"github.com/rhuss/castservice/pkg/schema"
	"github.com/rhuss/castservice/pkg/storage"
	"github.com/rhuss/castservice/pkg/storage/postgres"
)

// Database pairs the connection pool with the table descriptors queries are
// built against.
type Database struct {
	Pool  *postgres.Pool
	Casts schema.Table
}

// Open creates the connection pool described by cfg. When createSchema is
// set, the casts table is created if it does not exist.
func Open(ctx context.Context, cfg postgres.Config, createSchema bool) (*Database, error) {
	if createSchema {
		cfg.Bootstrap = append(cfg.Bootstrap, schema.Casts)
	}

	pool, err := postgres.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &Database{Pool: pool, Casts: schema.Casts}, nil
}

// Tables returns every table descriptor the service uses.
func (d *Database) Tables() []schema.Table {
	return []schema.Table{d.Casts}
}

// HealthCheck pings the database through the pool.
func (d *Database) HealthCheck(ctx context.Context) error {
	if d == nil || d.Pool == nil {
		return fmt.Errorf("%w: database not opened", storage.ErrConfiguration)
	}
	return d.Pool.HealthCheck(ctx)
}

// Close releases the connection pool.
func (d *Database) Close() error {
	if d == nil || d.Pool == nil {
		return nil
	}
	return d.Pool.Close()
}
