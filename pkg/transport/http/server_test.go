package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	gohttp "net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rhuss/castservice/pkg/database"
	"github.com/rhuss/castservice/pkg/schema"
	"github.com/rhuss/castservice/pkg/storage"
	"github.com/rhuss/castservice/pkg/storage/postgres"
	"github.com/rhuss/castservice/pkg/transport"
)

type fakeHealth struct {
	err   error
	calls atomic.Int32
	delay time.Duration
}

func (f *fakeHealth) HealthCheck(ctx context.Context) error {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", storage.ErrPoolExhausted, ctx.Err())
		}
	}
	return f.err
}

func decode(t *testing.T, r io.Reader, v any) {
	t.Helper()
	if err := json.NewDecoder(r).Decode(v); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
}

func TestHealthzDoesNotTouchDatabase(t *testing.T) {
	health := &fakeHealth{err: storage.ErrConnectivity}
	h := NewServer(health, nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != gohttp.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, gohttp.StatusOK)
	}
	if n := health.calls.Load(); n != 0 {
		t.Errorf("health checks = %d, want 0", n)
	}
	if rec.Header().Get(transport.RequestIDHeader) == "" {
		t.Error("expected request ID header from default middleware")
	}
}

func TestReadyzReportsReady(t *testing.T) {
	h := NewServer(&fakeHealth{}, nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))

	if rec.Code != gohttp.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, gohttp.StatusOK)
	}
	var body statusResponse
	decode(t, rec.Body, &body)
	if body.Status != "ready" {
		t.Errorf("status = %q, want %q", body.Status, "ready")
	}
}

func TestReadyzReportsErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind string
	}{
		{"connectivity", fmt.Errorf("%w: connection refused", storage.ErrConnectivity), storage.KindConnectivity},
		{"exhausted", fmt.Errorf("%w: 2/2 in use", storage.ErrPoolExhausted), storage.KindPoolExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewServer(&fakeHealth{err: tt.err}, nil).Handler()

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))

			if rec.Code != gohttp.StatusServiceUnavailable {
				t.Errorf("status = %d, want %d", rec.Code, gohttp.StatusServiceUnavailable)
			}
			var body transport.ErrorResponse
			decode(t, rec.Body, &body)
			if body.Error == nil || body.Error.Kind != tt.kind {
				t.Errorf("error = %+v, want kind %q", body.Error, tt.kind)
			}
		})
	}
}

func TestReadyzHonorsTimeout(t *testing.T) {
	h := NewServer(&fakeHealth{delay: time.Second}, nil, WithReadyTimeout(20*time.Millisecond)).Handler()

	start := time.Now()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))

	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("readyz took %v, expected the ready timeout to cut it short", elapsed)
	}
	if rec.Code != gohttp.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, gohttp.StatusServiceUnavailable)
	}
}

func TestReadyzWithoutDatabase(t *testing.T) {
	h := NewServer(nil, nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))

	if rec.Code != gohttp.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, gohttp.StatusServiceUnavailable)
	}
}

func TestSchemaEndpoints(t *testing.T) {
	h := NewServer(&fakeHealth{}, []schema.Table{schema.Casts}).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/schema", nil))
	if rec.Code != gohttp.StatusOK {
		t.Fatalf("list status = %d, want %d", rec.Code, gohttp.StatusOK)
	}
	var list struct {
		Tables []struct {
			Name    string          `json:"name"`
			Columns []schema.Column `json:"columns"`
		} `json:"tables"`
	}
	decode(t, rec.Body, &list)
	if len(list.Tables) != 1 || list.Tables[0].Name != "casts" {
		t.Fatalf("tables = %+v, want [casts]", list.Tables)
	}
	if len(list.Tables[0].Columns) != 3 {
		t.Errorf("columns = %d, want 3", len(list.Tables[0].Columns))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/schema/casts", nil))
	if rec.Code != gohttp.StatusOK {
		t.Errorf("get status = %d, want %d", rec.Code, gohttp.StatusOK)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/schema/movies", nil))
	if rec.Code != gohttp.StatusNotFound {
		t.Errorf("missing table status = %d, want %d", rec.Code, gohttp.StatusNotFound)
	}
	var errBody transport.ErrorResponse
	decode(t, rec.Body, &errBody)
	if errBody.Error == nil || errBody.Error.Type != transport.ErrorTypeNotFound {
		t.Errorf("error = %+v, want type %q", errBody.Error, transport.ErrorTypeNotFound)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewServer(&fakeHealth{}, nil, WithMetrics("/metrics")).Handler()

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != gohttp.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, gohttp.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "cast_service_requests_total") {
		t.Error("metrics output missing cast_service_requests_total")
	}
}

func TestMetricsDisabled(t *testing.T) {
	h := NewServer(&fakeHealth{}, nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != gohttp.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, gohttp.StatusNotFound)
	}
}

func TestServerStartsAndAcceptsRequests(t *testing.T) {
	srv := NewServer(&fakeHealth{}, nil, WithAddr("127.0.0.1:0"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	addr := ln.Addr().String()

	go srv.ServeOn(ln)
	time.Sleep(50 * time.Millisecond)

	resp, err := gohttp.Get("http://" + addr + "/readyz")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != gohttp.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, gohttp.StatusOK)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}

func TestServerGracefulShutdown(t *testing.T) {
	slow := &fakeHealth{delay: 200 * time.Millisecond}
	srv := NewServer(slow, nil,
		WithAddr("127.0.0.1:0"),
		WithShutdownTimeout(5*time.Second),
	)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	addr := ln.Addr().String()

	go srv.ServeOn(ln)
	time.Sleep(50 * time.Millisecond)

	responseCh := make(chan int, 1)
	go func() {
		resp, err := gohttp.Get("http://" + addr + "/readyz")
		if err != nil {
			responseCh <- 0
			return
		}
		defer resp.Body.Close()
		responseCh <- resp.StatusCode
	}()

	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(ctx)

	status := <-responseCh
	if status != gohttp.StatusOK {
		t.Errorf("slow request status = %d, want %d", status, gohttp.StatusOK)
	}
}

func TestServerRunStopsOnContextCancel(t *testing.T) {
	srv := NewServer(&fakeHealth{}, nil, WithAddr("127.0.0.1:0"), WithShutdownTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v, want nil", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestServerFunctionalOptions(t *testing.T) {
	srv := NewServer(&fakeHealth{}, nil,
		WithAddr(":9999"),
		WithTimeouts(time.Second, 2*time.Second),
		WithShutdownTimeout(10*time.Second),
		WithMetrics("/metrics"),
	)

	if srv.config.Addr != ":9999" {
		t.Errorf("addr = %q, want %q", srv.config.Addr, ":9999")
	}
	if srv.httpServer.ReadTimeout != time.Second || srv.httpServer.WriteTimeout != 2*time.Second {
		t.Errorf("timeouts = %v/%v, want 1s/2s", srv.httpServer.ReadTimeout, srv.httpServer.WriteTimeout)
	}
	if srv.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("shutdown timeout = %v, want %v", srv.config.ShutdownTimeout, 10*time.Second)
	}
	if srv.config.MetricsPath != "/metrics" {
		t.Errorf("metrics path = %q, want %q", srv.config.MetricsPath, "/metrics")
	}
}

var (
	_ HealthChecker = (*database.Database)(nil)
	_ HealthChecker = (*postgres.Pool)(nil)
)

func TestServerWithLoggerReceivesAccessLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := NewServer(&fakeHealth{}, nil, WithLogger(logger)).Handler()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))

	if !strings.Contains(buf.String(), "path=/healthz") {
		t.Errorf("access log not written to configured logger:\n%s", buf.String())
	}
}
