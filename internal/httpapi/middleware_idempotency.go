package httpapi

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/albarami/idis/internal/idempotency"
	"github.com/albarami/idis/internal/platform/apperr"
)

// IdempotencyTTL is how long a recorded response is replayable for
// (spec.md does not fix a value; 24h covers any realistic client retry
// window without growing the cache unbounded).
const IdempotencyTTL = 24 * time.Hour

// responseBuffer captures a handler's written response so it can be both
// sent to the current caller and, on first success, recorded for replay.
type responseBuffer struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: make(http.Header), status: http.StatusOK}
}

func (b *responseBuffer) Header() http.Header { return b.header }

func (b *responseBuffer) Write(p []byte) (int, error) { return b.body.Write(p) }

func (b *responseBuffer) WriteHeader(code int) { b.status = code }

func (b *responseBuffer) flushTo(w http.ResponseWriter) {
	for k, vs := range b.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(b.status)
	_, _ = w.Write(b.body.Bytes())
}

func headerMap(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

// withIdempotency implements spec.md §4.5 step 4: a request carrying
// Idempotency-Key replays the first recorded response for that key instead
// of re-running the mutation. Only 2xx responses are recorded — a failed
// attempt (4xx or 5xx) leaves the key free for a fresh retry.
func withIdempotency(store idempotency.Store, next http.Handler) http.Handler {
	if store == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Idempotency-Key")
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		tc, ok := tenantContextFrom(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, r, apperr.InvalidRequest("unreadable request body"))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		reqHash := idempotency.HashRequestBody(bodyBytes)

		existing, err := store.Get(r.Context(), tc.TenantID, key)
		if err != nil {
			writeError(w, r, apperr.Internal("idempotency store lookup failed", err))
			return
		}
		if existing != nil {
			if existing.RequestHash != reqHash {
				writeError(w, r, apperr.IdempotencyMismatch())
				return
			}
			for k, v := range existing.Headers {
				w.Header().Set(k, v)
			}
			w.Header().Set("X-IDIS-Idempotency-Replay", "true")
			w.WriteHeader(existing.StatusCode)
			_, _ = w.Write(existing.Body)
			return
		}

		buf := newResponseBuffer()
		next.ServeHTTP(buf, r)
		buf.flushTo(w)

		if buf.status < 200 || buf.status >= 300 {
			return
		}
		rec := idempotency.Record{
			RequestHash: reqHash,
			StatusCode:  buf.status,
			Headers:     headerMap(buf.header),
			Body:        buf.body.Bytes(),
		}
		if err := store.Put(r.Context(), tc.TenantID, key, rec, IdempotencyTTL); err != nil && !errors.Is(err, idempotency.ErrMismatch) {
			// The response already reached the caller; a failure to cache it
			// only means a future retry re-runs the mutation instead of
			// replaying, which the caller's own idempotency key is meant to
			// tolerate. Never fail the request over this.
			return
		}
	})
}
