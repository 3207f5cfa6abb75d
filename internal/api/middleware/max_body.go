package middleware

import (
	"net/http"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/api"
)

// MaxBodyBytes limits request body size. Bodies that declare a larger
// Content-Length are rejected up front; chunked bodies are cut off while
// reading and surface through api.DecodeJSON as the same 413.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				api.PayloadTooLarge(w)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
