// Package transport holds the HTTP middleware chain and JSON error
// envelope shared by the cast service endpoints.
//
// # Middleware
//
// Middleware wraps an http.Handler with cross-cutting behavior. Built-in
// middleware provides panic recovery, request ID assignment
// (X-Request-ID), and structured logging via log/slog.
//
// # Errors
//
// Storage failures are mapped to HTTP status codes by their storage error
// kind: an unreachable database or an exhausted pool is 503, a
// configuration problem is 500.
package transport
