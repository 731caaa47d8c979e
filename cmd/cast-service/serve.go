package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/rhuss/castservice/pkg/config"
	"github.com/rhuss/castservice/pkg/database"
	"github.com/rhuss/castservice/pkg/debug"
	"github.com/rhuss/castservice/pkg/observability"
	"github.com/rhuss/castservice/pkg/schema"
	"github.com/rhuss/castservice/pkg/storage"
	transporthttp "github.com/rhuss/castservice/pkg/transport/http"
)

func managedTables() []schema.Table {
	return []schema.Table{schema.Casts}
}

// setup loads configuration, installs the logger and opens the database.
func setup(ctx context.Context, c *cli.Context) (*config.Config, *database.Database, func(), error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, nil, err
	}

	logCloser := debug.Init(cfg.DebugSettings())

	db, err := database.Open(ctx, cfg.Postgres(), cfg.Database.CreateSchemaOnStart)
	if err != nil {
		observability.RecordStorageError(err)
		logCloser.Close()
		return nil, nil, nil, err
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			slog.Warn("closing database", "error", err)
		}
		logCloser.Close()
	}
	return cfg, db, cleanup, nil
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, db, cleanup, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := c.String("addr")
	if addr == "" {
		addr = fmt.Sprintf(":%d", cfg.Server.Port)
	}

	opts := []transporthttp.ServerOption{
		transporthttp.WithAddr(addr),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(slog.Default()),
	}
	if cfg.Observability.Metrics.Enabled {
		if err := prometheus.Register(observability.NewPoolCollector("casts", db.Pool)); err != nil {
			return fmt.Errorf("registering pool metrics: %w", err)
		}
		opts = append(opts, transporthttp.WithMetrics(cfg.Observability.Metrics.Path))
	}

	srv := transporthttp.NewServer(db, db.Tables(), opts...)
	return srv.Run(ctx)
}

func check(c *cli.Context) error {
	ctx := c.Context

	_, db, cleanup, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := db.HealthCheck(ctx); err != nil {
		return err
	}

	s := db.Pool.Stat()
	fmt.Fprintf(c.App.Writer, "database reachable\n")
	fmt.Fprintf(c.App.Writer, "pool: min=%d max=%d total=%d idle=%d acquired=%d\n",
		s.MinConns, s.MaxConns, s.TotalConns, s.IdleConns, s.AcquiredConns)
	return nil
}

// exitCode maps an error to a process exit status by its storage error kind.
func exitCode(err error) int {
	switch storage.Kind(err) {
	case storage.KindConfiguration:
		return 2
	case storage.KindConnectivity:
		return 3
	case storage.KindPoolExhausted:
		return 4
	default:
		return 1
	}
}
