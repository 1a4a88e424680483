package middleware

import (
	"net/http"
	"time"

	"github.com/bqmcp/bqmcp/internal/observability"
	"github.com/go-chi/chi/v5"
)

// Metrics records request count and latency per chi route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		observability.ObserveHTTPRequest(r.Method, route, rw.status, time.Since(start))
	})
}
