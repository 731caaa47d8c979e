package transport

import (
	"encoding/json"
	"net/http"

	"github.com/rhuss/castservice/pkg/storage"
)

// Error types used in JSON error responses.
const (
	ErrorTypeServer      = "server_error"
	ErrorTypeNotFound    = "not_found"
	ErrorTypeUnavailable = "unavailable"
)

// APIError is the body of an error response.
type APIError struct {
	Type    string `json:"type"`
	Kind    string `json:"kind,omitempty"` // storage error kind, when the failure came from storage
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError for JSON serialization as the top-level error response.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// WriteError writes a JSON error response with the given status code.
func WriteError(w http.ResponseWriter, status int, errType, message string) {
	writeErrorResponse(w, status, &APIError{Type: errType, Message: message})
}

// WriteStorageError writes a JSON error response for a storage failure,
// deriving the status code from its error kind.
func WriteStorageError(w http.ResponseWriter, err error) {
	status := HTTPStatusFromStorageError(err)
	errType := ErrorTypeServer
	if status == http.StatusServiceUnavailable {
		errType = ErrorTypeUnavailable
	}
	writeErrorResponse(w, status, &APIError{
		Type:    errType,
		Kind:    storage.Kind(err),
		Message: err.Error(),
	})
}

// HTTPStatusFromStorageError maps a storage error kind to an HTTP status code.
func HTTPStatusFromStorageError(err error) int {
	switch storage.Kind(err) {
	case storage.KindConnectivity, storage.KindPoolExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: apiErr})
}
