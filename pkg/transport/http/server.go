package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/castservice/pkg/observability"
	"github.com/rhuss/castservice/pkg/schema"
	"github.com/rhuss/castservice/pkg/transport"
)

// HealthChecker reports whether the backing database can serve requests.
// *database.Database and *postgres.Pool both satisfy it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server wraps an http.Server with the ops and schema routes and manages
// the full lifecycle including startup and graceful shutdown.
type Server struct {
	httpServer *http.Server
	config     ServerConfig
	logger     *slog.Logger
	health     HealthChecker
	tables     []schema.Table
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	ReadyTimeout    time.Duration
	MetricsPath     string
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		ReadyTimeout:    2 * time.Second,
	}
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) ServerOption {
	return func(s *Server) { s.config.Addr = addr }
}

// WithTimeouts sets the read and write deadlines of the underlying server.
func WithTimeouts(read, write time.Duration) ServerOption {
	return func(s *Server) {
		s.config.ReadTimeout = read
		s.config.WriteTimeout = write
	}
}

// WithShutdownTimeout sets the graceful shutdown deadline.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.config.ShutdownTimeout = d }
}

// WithReadyTimeout bounds the database check behind /readyz.
func WithReadyTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.config.ReadyTimeout = d }
}

// WithMetrics exposes the Prometheus default registry at path.
// An empty path disables the endpoint.
func WithMetrics(path string) ServerOption {
	return func(s *Server) { s.config.MetricsPath = path }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a server answering health probes against health and
// describing tables. Default middleware (recovery, request ID, logging,
// metrics) is applied automatically.
func NewServer(health HealthChecker, tables []schema.Table, opts ...ServerOption) *Server {
	s := &Server{
		config: DefaultServerConfig(),
		logger: slog.Default(),
		health: health,
		tables: tables,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.httpServer = &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	return s
}

// Handler returns the routed handler wrapped in the default middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.HandleFunc("GET /v1/schema", s.handleListTables)
	mux.HandleFunc("GET /v1/schema/{table}", s.handleGetTable)
	if s.config.MetricsPath != "" {
		mux.Handle("GET "+s.config.MetricsPath, promhttp.Handler())
	}

	chain := transport.Chain(
		transport.Recovery(),
		transport.RequestID(),
		transport.Logging(s.logger),
		observability.MetricsMiddleware,
	)
	return chain(mux)
}

// Run listens on the configured address and serves until ctx is done.
// It then shuts down gracefully, waiting for in-flight requests to
// complete within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln)
}

// ServeOn starts the server on the given listener. Used for testing.
func (s *Server) ServeOn(ln net.Listener) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	return s.shutdown()
}

func (s *Server) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down gracefully", slog.Duration("timeout", s.config.ShutdownTimeout))
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Shutdown gracefully shuts down the server with the given context.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
