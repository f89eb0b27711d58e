// Package audit implements the audit-fail-closed pipeline (spec.md §4.5):
// build a candidate AuditEvent from request state, validate it against the
// closed schema, and emit it through a sink. Any failure at any stage is
// fatal to the mutation that triggered it.
package audit

import (
	"context"
	"time"

	"github.com/albarami/idis/internal/domain/audit"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
	"github.com/albarami/idis/internal/platform/metrics"
	"github.com/albarami/idis/internal/validate"
)

// Sink persists a validated AuditEvent. Both implementations (JSONL file,
// transactional Postgres) share this single contract.
type Sink interface {
	Emit(ctx context.Context, ev audit.Event) error
	Name() string
}

// BuildParams carries the request-derived fields needed to build a candidate
// event; callers populate only what their route knows.
type BuildParams struct {
	TenantID       string
	Actor          audit.Actor
	RequestID      string
	Method         string
	Path           string
	StatusCode     int
	IdempotencyKey string
	ResourceType   string
	ResourceID     string
	EventType      string
	Severity       audit.Severity
	Summary        string
	Hashes         []string
	Refs           []string
	Safe           map[string]interface{}
}

// Build constructs a candidate AuditEvent from p. It returns AUDIT_EMIT_FAILED
// if a 2xx mutation is missing its resource ID (spec.md §4.5 step 1: "no
// fabricated IDs").
func Build(p BuildParams) (audit.Event, error) {
	if p.StatusCode >= 200 && p.StatusCode < 300 && p.ResourceID == "" {
		return audit.Event{}, apperr.AuditEmitFailed(nil).WithDetails("reason", "missing resource id on 2xx mutation")
	}
	return audit.Event{
		EventID:    idgen.New(),
		OccurredAt: time.Now().UTC(),
		TenantID:   p.TenantID,
		Actor:      p.Actor,
		Request: audit.Request{
			RequestID:      p.RequestID,
			Method:         p.Method,
			Path:           p.Path,
			StatusCode:     p.StatusCode,
			IdempotencyKey: p.IdempotencyKey,
		},
		Resource:  audit.Resource{ResourceType: p.ResourceType, ResourceID: p.ResourceID},
		EventType: p.EventType,
		Severity:  p.Severity,
		Summary:   p.Summary,
		Payload:   audit.Payload{Hashes: p.Hashes, Refs: p.Refs, Safe: p.Safe},
	}, nil
}

// Pipeline composes build (by the caller) -> validate -> emit, recording
// metrics for every emission attempt.
type Pipeline struct {
	sink Sink
}

// NewPipeline wires a Pipeline around the given sink.
func NewPipeline(sink Sink) *Pipeline {
	return &Pipeline{sink: sink}
}

// Emit validates ev and emits it through the configured sink. Events for 4xx
// responses should never reach here (nothing mutated); events for 5xx are
// emitted best-effort by the caller. Any validation or emission failure is
// surfaced as AUDIT_EMIT_FAILED (spec.md §4.5 steps 2-3).
func (p *Pipeline) Emit(ctx context.Context, ev audit.Event) error {
	if err := validate.AuditEvent(ev); err != nil {
		metrics.AuditEmissions.WithLabelValues(p.sink.Name(), "schema_rejected").Inc()
		return apperr.AuditEmitFailed(err)
	}
	if err := p.sink.Emit(ctx, ev); err != nil {
		metrics.AuditEmissions.WithLabelValues(p.sink.Name(), "sink_error").Inc()
		return apperr.AuditEmitFailed(err)
	}
	metrics.AuditEmissions.WithLabelValues(p.sink.Name(), "ok").Inc()
	return nil
}
