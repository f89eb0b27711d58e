package httpapi

import (
	"net/http"

	"github.com/albarami/idis/internal/platform/logging"
)

// requestIDMiddleware assigns each request a correlation ID (from the
// caller's X-Request-Id header if present, else freshly minted), attaching
// it both under httpapi's own context key and logging's, so writeError and
// Logger.WithContext agree on the same value.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = logging.NewRequestID()
		}
		ctx := withRequestID(r.Context(), id)
		ctx = logging.WithRequestID(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
