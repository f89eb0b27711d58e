// Package httpapi wires the /v1 HTTP surface: gorilla/mux routing, the
// middleware chain (tenant context, security gates, idempotency, audit), and
// the truth-dashboard websocket stream.
package httpapi

import (
	"context"

	"github.com/albarami/idis/internal/security"
)

type ctxKey string

const (
	ctxKeyTenant      ctxKey = "idis_tenant_context"
	ctxKeyRequestID   ctxKey = "idis_request_id"
	ctxKeyAuditResult ctxKey = "idis_audit_result"
)

// withTenantContext attaches the authenticated security.TenantContext
// produced by gate 1 (Authentication) to ctx.
func withTenantContext(ctx context.Context, tc security.TenantContext) context.Context {
	return context.WithValue(ctx, ctxKeyTenant, tc)
}

// tenantContextFrom extracts the security.TenantContext attached by
// withTenantContext, if any.
func tenantContextFrom(ctx context.Context) (security.TenantContext, bool) {
	tc, ok := ctx.Value(ctxKeyTenant).(security.TenantContext)
	return tc, ok
}

// withRequestID attaches the correlation ID for this request to ctx.
func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// requestIDFrom extracts the request ID attached by withRequestID.
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}
