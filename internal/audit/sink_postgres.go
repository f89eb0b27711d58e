package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/albarami/idis/internal/domain/audit"
	"github.com/albarami/idis/internal/platform/canonjson"
	"github.com/albarami/idis/internal/storage/postgres"
	"github.com/lib/pq"
)

// PostgresSink writes audit_events rows using whatever executor
// postgres.DBTXFromContext resolves for ctx. When the caller wrapped ctx
// with postgres.WithTx before invoking the mutation, this INSERT runs inside
// that same transaction, so the mutation's own writes and the audit record
// commit or roll back together (spec.md §4.5 step 3). Called outside a
// WithTx context it falls back to the bare pool connection, which is still
// correct for read-only or best-effort (5xx) emissions.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink wires a PostgresSink around db.
func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

// Name identifies this sink for metrics labels.
func (s *PostgresSink) Name() string { return "postgres" }

// Emit inserts ev as a single row. payload_safe, request and actor are
// stored as canonical-JSON columns so a row's hash can be recomputed and
// compared against what the JSONL sink wrote for the same event.
func (s *PostgresSink) Emit(ctx context.Context, ev audit.Event) error {
	actorJSON, err := canonjson.Marshal(ev.Actor)
	if err != nil {
		return fmt.Errorf("marshal actor: %w", err)
	}
	requestJSON, err := canonjson.Marshal(ev.Request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	payloadJSON, err := canonjson.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	hashes := make([]byte, 0)
	if len(ev.Payload.Hashes) > 0 {
		b, err := json.Marshal(pq.Array(ev.Payload.Hashes))
		if err != nil {
			return fmt.Errorf("marshal hashes: %w", err)
		}
		hashes = b
	}

	db := postgres.DBTXFromContext(ctx, s.db)
	_, err = db.ExecContext(ctx, `
		INSERT INTO audit_events (
			event_id, occurred_at, tenant_id, actor, request, resource_type,
			resource_id, event_type, severity, summary, payload, payload_hashes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (event_id) DO NOTHING
	`,
		ev.EventID, ev.OccurredAt, ev.TenantID, actorJSON, requestJSON,
		ev.Resource.ResourceType, ev.Resource.ResourceID, ev.EventType,
		ev.Severity, ev.Summary, payloadJSON, hashes,
	)
	if err != nil {
		return fmt.Errorf("insert audit_events: %w", err)
	}
	return nil
}

var _ Sink = (*PostgresSink)(nil)
