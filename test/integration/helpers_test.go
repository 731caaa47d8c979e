// Package integration runs the cast service HTTP stack against a real
// PostgreSQL server started with testcontainers.
package integration

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rhuss/castservice/pkg/config"
	"github.com/rhuss/castservice/pkg/database"
	transporthttp "github.com/rhuss/castservice/pkg/transport/http"
)

func init() {
	if os.Getenv("DOCKER_HOST") == "" {
		out, err := exec.Command("podman", "machine", "inspect", "--format", "{{.ConnectionInfo.PodmanSocket.Path}}").Output()
		if err == nil {
			if sock := strings.TrimSpace(string(out)); sock != "" {
				os.Setenv("DOCKER_HOST", "unix://"+sock)
				if os.Getenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED") == "" {
					os.Setenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED", "true")
				}
			}
		}
	}
}

// TestEnvironment holds the service under test and the database behind it.
type TestEnvironment struct {
	Server *httptest.Server
	DB     *database.Database
}

// BaseURL returns the base URL of the service.
func (e *TestEnvironment) BaseURL() string {
	return e.Server.URL
}

// setupTestEnvironment starts PostgreSQL, opens the database the way the
// serve command does, and serves the HTTP handler in-process.
func setupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping integration tests")
	}

	ctx := context.Background()
	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("casts_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() { container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	cfg := config.Defaults()
	cfg.Database.URI = dsn
	cfg.Database.AcquireTimeout = 2 * time.Second
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}

	db, err := database.Open(ctx, cfg.Postgres(), true)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}

	srv := transporthttp.NewServer(db, db.Tables(),
		transporthttp.WithMetrics(cfg.Observability.Metrics.Path))
	ts := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		ts.Close()
		db.Close()
	})
	return &TestEnvironment{Server: ts, DB: db}
}

func getURL(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(data)
}
