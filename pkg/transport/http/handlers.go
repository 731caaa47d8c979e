package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rhuss/castservice/pkg/observability"
	"github.com/rhuss/castservice/pkg/schema"
	"github.com/rhuss/castservice/pkg/storage"
	"github.com/rhuss/castservice/pkg/transport"
)

// statusResponse is the body of a passing health probe. Failures use the
// transport error envelope.
type statusResponse struct {
	Status string `json:"status"`
}

// handleHealthz reports liveness. It never touches the database.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// handleReadyz pings the database through the pool.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		transport.WriteError(w, http.StatusServiceUnavailable, transport.ErrorTypeUnavailable, "no database configured")
		return
	}

	ctx := r.Context()
	if s.config.ReadyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ReadyTimeout)
		defer cancel()
	}

	if err := s.health.HealthCheck(ctx); err != nil {
		observability.RecordStorageError(err)
		s.logger.Warn("readiness check failed", "kind", storage.Kind(err), "error", err)
		transport.WriteStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ready"})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables := s.tables
	if tables == nil {
		tables = []schema.Table{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("table")
	for _, t := range s.tables {
		if t.Name() == name {
			writeJSON(w, http.StatusOK, t)
			return
		}
	}
	transport.WriteError(w, http.StatusNotFound, transport.ErrorTypeNotFound,
		fmt.Sprintf("table %q not found", name))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
