package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/asr-server/logger"
)

var quietPaths = map[string]bool{
	"/health":    true,
	"/liveness":  true,
	"/readiness": true,
	"/metrics":   true,
}

// RequestLogger logs every request with method, path, status code,
// response size and duration. Probe and metrics paths are skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := newResponseRecorder(w)
			next.ServeHTTP(rec, r)

			fields := logger.Fields(
				"method", r.Method,
				logger.FieldPath, r.URL.Path,
				logger.FieldStatus, rec.status,
				"response_bytes", rec.written,
				logger.FieldDuration, time.Since(start).Milliseconds(),
			)
			if r.ContentLength > 0 {
				fields[logger.FieldBytes] = r.ContentLength
			}
			logByStatus(log.WithContext(r.Context()), fields, rec.status)
		})
	}
}

// logByStatus logs at error for 5xx, warn for 4xx and info otherwise.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Info("Request completed", fields)
	}
}
