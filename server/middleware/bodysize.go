package middleware

import (
	"net/http"

	apperrors "github.com/kbukum/asr-server/errors"
)

// BodySizeLimit caps the request body at limit bytes. Requests that
// announce a larger Content-Length are rejected with 413 before the handler
// runs; chunked bodies are cut off by http.MaxBytesReader and surface as
// *http.MaxBytesError from the handler's read. A limit <= 0 disables the cap.
func BodySizeLimit(limit int64) Middleware {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeError(w, apperrors.PayloadTooLarge(limit))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
