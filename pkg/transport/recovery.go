package transport

import (
	"fmt"
	"log/slog"
	"net/http"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to 500 responses. The panic value is logged, never sent
// to the client. The server continues to accept new
// requests after a panic is recovered.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					slog.Error("handler panic",
						"request_id", RequestIDFromContext(r.Context()),
						"panic", fmt.Sprint(rec),
					)
					WriteError(w, http.StatusInternalServerError, ErrorTypeServer, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
