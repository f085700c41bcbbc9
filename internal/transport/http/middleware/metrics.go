package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"epms/internal/platform/metrics"
)

// Metrics records request counts and latency per chi route pattern, so
// /goals/{goalID} stays one series instead of one per goal.
func Metrics(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if collector == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			collector.Record(route, r.Method, recorder.status, time.Since(start))
		})
	}
}
