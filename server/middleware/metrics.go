package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/asr-server/observability"
)

// MetricsSource yields the service metrics, or nil before observability
// has started. *observability.Component implements it.
type MetricsSource interface {
	Metrics() *observability.Metrics
}

// Metrics records in-flight count, totals and latency for every request.
func Metrics(src MetricsSource) Middleware {
	return func(next http.Handler) http.Handler {
		if src == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := src.Metrics()
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			start := time.Now()
			m.RecordRequestStart(ctx)
			rec := newResponseRecorder(w)
			defer func() {
				m.RecordRequestEnd(ctx, r.URL.Path, r.Method, rec.status, time.Since(start))
			}()
			next.ServeHTTP(rec, r)
		})
	}
}
