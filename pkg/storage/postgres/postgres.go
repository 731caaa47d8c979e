// Package postgres provides the PostgreSQL connection pool of the cast
// service. It uses pgx/v5 for connection pooling and keeps the pool small
// and bounded: callers beyond MaxConns wait for a connection to be released.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhuss/castservice/pkg/debug"
	"github.com/rhuss/castservice/pkg/storage"
)

// Pool is a bounded, shared PostgreSQL connection pool.
type Pool struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
	closeOnce      sync.Once
}

// PoolStats is a point-in-time snapshot of pool usage.
type PoolStats struct {
	AcquiredConns        int32
	IdleConns            int32
	TotalConns           int32
	ConstructingConns    int32
	MaxConns             int32
	MinConns             int32
	AcquireCount         int64
	EmptyAcquireCount    int64
	CanceledAcquireCount int64
	NewConnsCount        int64
	AcquireDuration      time.Duration
}

// New creates a connection pool with the given configuration.
//
// Invalid settings are reported as storage.ErrConfiguration and no pool is
// created. Unless cfg.Lazy is set, New pings the database and reports an
// unreachable server as storage.ErrConnectivity. Tables listed in
// cfg.Bootstrap are created if they do not exist.
func New(ctx context.Context, cfg Config) (*Pool, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing DSN: %w", storage.ErrConfiguration, err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	poolCfg.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		debug.Log("pool", "connection established", "pid", conn.PgConn().PID())
		return nil
	}
	poolCfg.BeforeClose = func(conn *pgx.Conn) {
		debug.Log("pool", "connection closing", "pid", conn.PgConn().PID())
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: creating connection pool: %w", storage.ErrConfiguration, err)
	}

	p := &Pool{pool: pool, acquireTimeout: cfg.AcquireTimeout}

	if !cfg.Lazy {
		if err := p.HealthCheck(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}

	if len(cfg.Bootstrap) > 0 {
		if err := p.bootstrap(ctx, cfg.Bootstrap); err != nil {
			pool.Close()
			return nil, fmt.Errorf("bootstrapping schema: %w", err)
		}
	}

	slog.Info("database pool ready",
		"host", poolCfg.ConnConfig.Host,
		"database", poolCfg.ConnConfig.Database,
		"min_conns", cfg.MinConns,
		"max_conns", cfg.MaxConns,
		"lazy", cfg.Lazy,
	)

	return p, nil
}

// Acquire lends a connection from the pool. The caller must call Release
// on the returned connection. Acquire blocks while all MaxConns
// connections are in use; if the wait ends because ctx (or the configured
// acquire timeout) expired, the error wraps storage.ErrPoolExhausted.
func (p *Pool) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	if p.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.acquireTimeout)
		defer cancel()
	}

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, p.acquireError(ctx, err)
	}

	debug.Log("pool", "connection acquired", "acquired", p.pool.Stat().AcquiredConns())
	return conn, nil
}

// WithConn acquires a connection, runs fn with it, and releases it on every
// exit path, including errors and panics.
func (p *Pool) WithConn(ctx context.Context, fn func(ctx context.Context, conn *pgxpool.Conn) error) error {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return fn(ctx, conn)
}

// Exec runs a statement on a pooled connection.
func (p *Pool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	var tag pgconn.CommandTag
	err := p.WithConn(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		traceSQL("exec", sql)
		var err error
		tag, err = conn.Exec(ctx, sql, args...)
		return err
	})
	return tag, err
}

// Query runs a query on a pooled connection. The connection returns to
// the pool when the rows are closed. Acquisition failures are classified
// the same way as for Acquire.
func (p *Pool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	traceSQL("query", sql)
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		conn.Release()
		return nil, err
	}
	return &connRows{Rows: rows, conn: conn}, nil
}

// QueryRow runs a query expected to return at most one row. The
// connection returns to the pool when the row is scanned; an acquisition
// failure is returned by Scan.
func (p *Pool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	rows, err := p.Query(ctx, sql, args...)
	if err != nil {
		return &connRow{err: err}
	}
	return &connRow{rows: rows}
}

// Stat returns a snapshot of pool usage.
func (p *Pool) Stat() PoolStats {
	s := p.pool.Stat()
	return PoolStats{
		AcquiredConns:        s.AcquiredConns(),
		IdleConns:            s.IdleConns(),
		TotalConns:           s.TotalConns(),
		ConstructingConns:    s.ConstructingConns(),
		MaxConns:             s.MaxConns(),
		MinConns:             p.pool.Config().MinConns,
		AcquireCount:         s.AcquireCount(),
		EmptyAcquireCount:    s.EmptyAcquireCount(),
		CanceledAcquireCount: s.CanceledAcquireCount(),
		NewConnsCount:        s.NewConnsCount(),
		AcquireDuration:      s.AcquireDuration(),
	}
}

// HealthCheck verifies the database connection.
func (p *Pool) HealthCheck(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		if p.saturated() && ctx.Err() != nil {
			return fmt.Errorf("%w: %w", storage.ErrPoolExhausted, err)
		}
		return fmt.Errorf("%w: %w", storage.ErrConnectivity, err)
	}
	return nil
}

// Close closes all connections. Calls after the first are no-ops.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		p.pool.Close()
		slog.Info("database pool closed")
	})
	return nil
}

// acquireError classifies a failed acquisition. A wait that ended while
// every connection was lent out is exhaustion; anything else means a new
// connection could not be established.
func (p *Pool) acquireError(ctx context.Context, err error) error {
	if ctx.Err() != nil && p.saturated() {
		s := p.pool.Stat()
		return fmt.Errorf("%w: %d of %d connections in use: %w",
			storage.ErrPoolExhausted, s.AcquiredConns(), s.MaxConns(), err)
	}
	return fmt.Errorf("%w: acquiring connection: %w", storage.ErrConnectivity, err)
}

// maxTraceSQL bounds the statement text written to trace logs.
const maxTraceSQL = 500

func traceSQL(msg, sql string) {
	debug.Trace("storage", msg, "sql", debug.Truncate(sql, maxTraceSQL))
}

func (p *Pool) saturated() bool {
	s := p.pool.Stat()
	return s.AcquiredConns() >= s.MaxConns()
}
