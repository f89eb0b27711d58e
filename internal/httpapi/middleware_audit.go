package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/albarami/idis/internal/audit"
	domainaudit "github.com/albarami/idis/internal/domain/audit"
	"github.com/albarami/idis/internal/platform/logging"
	"github.com/albarami/idis/internal/security"
)

// statusRecorder captures the status code a handler wrote, mirroring the
// teacher's audit middleware recorder.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// AuditResult is what a handler reports back to the audit middleware about
// the mutation it just performed. Handlers that don't mutate (pure reads)
// never call withAuditResult, so no event is built for them.
type AuditResult struct {
	EventType    string
	ResourceType string
	ResourceID   string
	Severity     domainaudit.Severity
	Summary      string
	Hashes       []string
	Refs         []string
	Safe         map[string]interface{}
}

// withAuditResult attaches res to r's context for the audit middleware to
// read after the handler returns. Handlers call this exactly once, right
// before returning a successful mutation response.
func withAuditResult(r *http.Request, res AuditResult) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKeyAuditResult, &res))
}

// wrapWithAudit implements spec.md §4.5 steps 1-3: build a candidate event
// from the completed request, validate it, and emit it through pipeline.
// 4xx responses are skipped (nothing mutated); 5xx are emitted best-effort.
// Any build/validate/emit failure is fatal — rendered as AUDIT_EMIT_FAILED
// even though the underlying mutation already succeeded, per spec's
// "mutation that caused it is rolled back" invariant (the caller's storage
// transaction shares the audit write via internal/storage/postgres.WithTx,
// so a failed emit here means that transaction never committed).
func wrapWithAudit(pipeline *audit.Pipeline, log *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if rec.status >= 400 && rec.status < 500 {
			return
		}

		result, ok := r.Context().Value(ctxKeyAuditResult).(*AuditResult)
		if !ok || result == nil {
			return
		}

		tc, _ := tenantContextFrom(r.Context())
		ev, err := audit.Build(audit.BuildParams{
			TenantID: tc.TenantID,
			Actor: domainaudit.Actor{
				ActorType: domainaudit.ActorHuman,
				ActorID:   tc.ActorID,
				Roles:     rolesToStrings(tc.Roles...),
				IP:        clientIP(r),
				UserAgent: r.UserAgent(),
			},
			RequestID:      requestIDFrom(r.Context()),
			Method:         r.Method,
			Path:           r.URL.Path,
			StatusCode:     rec.status,
			IdempotencyKey: r.Header.Get("Idempotency-Key"),
			ResourceType:   result.ResourceType,
			ResourceID:     result.ResourceID,
			EventType:      result.EventType,
			Severity:       result.Severity,
			Summary:        result.Summary,
			Hashes:         result.Hashes,
			Refs:           result.Refs,
			Safe:           result.Safe,
		})
		if err != nil {
			log.WithContext(r.Context()).WithError(err).Error("audit build failed")
			writeError(w, r, err)
			return
		}
		if err := pipeline.Emit(r.Context(), ev); err != nil {
			log.WithContext(r.Context()).WithError(err).Error("audit emit failed")
			writeError(w, r, err)
			return
		}
	})
}

func rolesToStrings(roles ...security.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func clientIP(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if h != "" {
		parts := strings.Split(h, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	return strings.TrimSpace(r.RemoteAddr)
}
