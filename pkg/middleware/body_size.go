package middleware

import (
	"net/http"

	apperrors "fieldnorm/pkg/errors"
	httputil "fieldnorm/pkg/http"
)

// MaxRequestSize caps request bodies at limit bytes. Declared lengths over
// the limit are rejected up front; undeclared ones fail on read.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				httputil.WriteError(w, apperrors.PayloadTooLarge(limit))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
