package graph

import (
	"context"
	"fmt"

	"github.com/albarami/idis/internal/audit"
	domainaudit "github.com/albarami/idis/internal/domain/audit"
	"github.com/albarami/idis/internal/domain/calc"
	"github.com/albarami/idis/internal/domain/claim"
	"github.com/albarami/idis/internal/domain/defect"
	"github.com/albarami/idis/internal/domain/document"
	"github.com/albarami/idis/internal/domain/evidence"
	"github.com/albarami/idis/internal/domain/sanad"
)

// Status is the outcome of one projection attempt (spec.md §4.6).
type Status string

const (
	// StatusSkipped means no Store is configured; this is not an error.
	StatusSkipped   Status = "SKIPPED"
	StatusCompleted Status = "COMPLETED"
	// StatusFailed means the projection write failed but the failure audit
	// event emitted successfully.
	StatusFailed Status = "FAILED"
	// StatusAuditFailure is the worst compound state: the projection write
	// failed AND the failure audit event itself failed to emit. Callers must
	// treat this as loud as a failed mutation, since the failure went
	// unrecorded.
	StatusAuditFailure Status = "AUDIT_FAILURE"
)

// Result is the outcome of one ProjectionService call.
type Result struct {
	Status Status
	Err    error
}

// ProjectionService derives the Graph's Sanad provenance view from
// Postgres-held entities (spec.md §4.6). Store is optional: a nil Store
// means Graph projection is not configured for this deployment, and every
// call returns StatusSkipped rather than failing.
type ProjectionService struct {
	store   Store
	auditor *audit.Pipeline
}

// NewProjectionService wires a ProjectionService. store may be nil.
func NewProjectionService(store Store, auditor *audit.Pipeline) *ProjectionService {
	return &ProjectionService{store: store, auditor: auditor}
}

// ProjectDeal upserts a Deal node plus its Document and Span children, and
// any named Entities mentioned across those spans, grounded on
// upsert_deal_graph_projection.
func (s *ProjectionService) ProjectDeal(ctx context.Context, tenantID, dealID string, documents []document.Document, spans []document.Span, entities []Entity) Result {
	if s.store == nil {
		return Result{Status: StatusSkipped}
	}

	err := s.projectDeal(ctx, tenantID, dealID, documents, spans, entities)
	return s.finalize(ctx, tenantID, "deal", dealID, err)
}

func (s *ProjectionService) projectDeal(ctx context.Context, tenantID, dealID string, documents []document.Document, spans []document.Span, entities []Entity) error {
	if err := s.store.UpsertNode(ctx, Node{Label: NodeDeal, TenantID: tenantID, ID: dealID}); err != nil {
		return fmt.Errorf("upsert deal node: %w", err)
	}

	spansByDocument := map[string][]document.Span{}
	for _, sp := range spans {
		spansByDocument[sp.DocumentID] = append(spansByDocument[sp.DocumentID], sp)
	}

	for _, d := range documents {
		if err := s.store.UpsertNode(ctx, Node{
			Label:    NodeDocument,
			TenantID: tenantID,
			ID:       d.DocumentID,
			Properties: map[string]interface{}{
				"format":   string(d.Format),
				"filename": d.Filename,
				"version":  d.Version,
			},
		}); err != nil {
			return fmt.Errorf("upsert document node %s: %w", d.DocumentID, err)
		}
		if err := s.store.UpsertEdge(ctx, Edge{Type: EdgeHasDocument, TenantID: tenantID, FromID: dealID, ToID: d.DocumentID}); err != nil {
			return fmt.Errorf("upsert deal->document edge %s: %w", d.DocumentID, err)
		}

		for _, sp := range spansByDocument[d.DocumentID] {
			if err := s.store.UpsertNode(ctx, Node{
				Label:    NodeSpan,
				TenantID: tenantID,
				ID:       sp.SpanID,
				Properties: map[string]interface{}{
					"span_type": string(sp.SpanType),
				},
			}); err != nil {
				return fmt.Errorf("upsert span node %s: %w", sp.SpanID, err)
			}
			if err := s.store.UpsertEdge(ctx, Edge{Type: EdgeHasSpan, TenantID: tenantID, FromID: d.DocumentID, ToID: sp.SpanID}); err != nil {
				return fmt.Errorf("upsert document->span edge %s: %w", sp.SpanID, err)
			}
		}
	}

	for _, e := range entities {
		if err := s.store.UpsertNode(ctx, Node{
			Label:    NodeEntity,
			TenantID: tenantID,
			ID:       e.EntityID,
			Properties: map[string]interface{}{
				"name": e.Name,
				"type": e.Type,
			},
		}); err != nil {
			return fmt.Errorf("upsert entity node %s: %w", e.EntityID, err)
		}
		for _, spanID := range e.SpanIDs {
			if err := s.store.UpsertEdge(ctx, Edge{Type: EdgeMentionedIn, TenantID: tenantID, FromID: e.EntityID, ToID: spanID}); err != nil {
				return fmt.Errorf("upsert entity->span edge %s->%s: %w", e.EntityID, spanID, err)
			}
		}
	}

	return nil
}

// SanadProjectionInput carries every entity upsert_claim_sanad_projection
// needs to derive the full Sanad subgraph for one claim.
type SanadProjectionInput struct {
	Claim         claim.Claim
	Sanad         sanad.Sanad
	EvidenceItems []evidence.Evidence
	Defects       []defect.Defect
	Calculations  []calc.DeterministicCalculation
}

// ProjectClaimSanad upserts the Claim node and its full transmission chain:
// EvidenceItems (SUPPORTED_BY), TransmissionNodes (HAS_SANAD_STEP, with
// INPUT/OUTPUT edges keyed by ref type), Defects (HAS_DEFECT), and
// Calculations (DERIVED_FROM), grounded on upsert_claim_sanad_projection.
func (s *ProjectionService) ProjectClaimSanad(ctx context.Context, in SanadProjectionInput) Result {
	if s.store == nil {
		return Result{Status: StatusSkipped}
	}

	err := s.projectClaimSanad(ctx, in)
	return s.finalize(ctx, in.Claim.TenantID, "claim", in.Claim.ClaimID, err)
}

func (s *ProjectionService) projectClaimSanad(ctx context.Context, in SanadProjectionInput) error {
	tenantID := in.Claim.TenantID
	claimID := in.Claim.ClaimID

	if err := s.store.UpsertNode(ctx, Node{
		Label:    NodeClaim,
		TenantID: tenantID,
		ID:       claimID,
		Properties: map[string]interface{}{
			"claim_class": string(in.Claim.ClaimClass),
			"grade":       string(in.Claim.ClaimGrade),
			"verdict":     string(in.Claim.ClaimVerdict),
		},
	}); err != nil {
		return fmt.Errorf("upsert claim node: %w", err)
	}

	for _, ev := range in.EvidenceItems {
		if err := s.store.UpsertNode(ctx, Node{
			Label:    NodeEvidenceItem,
			TenantID: tenantID,
			ID:       ev.EvidenceID,
			Properties: map[string]interface{}{
				"source_grade":        string(ev.SourceGrade),
				"verification_status": string(ev.VerificationStatus),
			},
		}); err != nil {
			return fmt.Errorf("upsert evidence node %s: %w", ev.EvidenceID, err)
		}
		if err := s.store.UpsertEdge(ctx, Edge{Type: EdgeSupportedBy, TenantID: tenantID, FromID: claimID, ToID: ev.EvidenceID}); err != nil {
			return fmt.Errorf("upsert claim->evidence edge %s: %w", ev.EvidenceID, err)
		}
	}

	for _, node := range in.Sanad.Nodes {
		if err := s.store.UpsertNode(ctx, Node{
			Label:    NodeTransmissionNode,
			TenantID: tenantID,
			ID:       node.NodeID,
			Properties: map[string]interface{}{
				"kind": string(node.Kind),
			},
		}); err != nil {
			return fmt.Errorf("upsert transmission node %s: %w", node.NodeID, err)
		}
		if err := s.store.UpsertEdge(ctx, Edge{Type: EdgeHasSanadStep, TenantID: tenantID, FromID: in.Sanad.SanadID, ToID: node.NodeID}); err != nil {
			return fmt.Errorf("upsert sanad->step edge %s: %w", node.NodeID, err)
		}
		if err := s.store.UpsertEdge(ctx, Edge{Type: EdgeOutput, TenantID: tenantID, FromID: node.NodeID, ToID: claimID}); err != nil {
			return fmt.Errorf("upsert step->claim output edge %s: %w", node.NodeID, err)
		}
		for _, ref := range node.InputRefs {
			if err := s.store.UpsertEdge(ctx, Edge{Type: EdgeInput, TenantID: tenantID, FromID: ref, ToID: node.NodeID}); err != nil {
				return fmt.Errorf("upsert input edge %s->%s: %w", ref, node.NodeID, err)
			}
		}
	}

	for _, d := range in.Defects {
		if err := s.store.UpsertNode(ctx, Node{
			Label:    NodeDefect,
			TenantID: tenantID,
			ID:       d.DefectID,
			Properties: map[string]interface{}{
				"defect_type": string(d.DefectType),
				"severity":    string(d.Severity),
				"status":      string(d.Status),
			},
		}); err != nil {
			return fmt.Errorf("upsert defect node %s: %w", d.DefectID, err)
		}
		if err := s.store.UpsertEdge(ctx, Edge{Type: EdgeHasDefect, TenantID: tenantID, FromID: in.Sanad.SanadID, ToID: d.DefectID}); err != nil {
			return fmt.Errorf("upsert sanad->defect edge %s: %w", d.DefectID, err)
		}
	}

	for _, c := range in.Calculations {
		if err := s.store.UpsertNode(ctx, Node{
			Label:    NodeCalculation,
			TenantID: tenantID,
			ID:       c.CalcID,
			Properties: map[string]interface{}{
				"calc_type": c.CalcType,
			},
		}); err != nil {
			return fmt.Errorf("upsert calculation node %s: %w", c.CalcID, err)
		}
		if err := s.store.UpsertEdge(ctx, Edge{Type: EdgeDerivedFrom, TenantID: tenantID, FromID: claimID, ToID: c.CalcID}); err != nil {
			return fmt.Errorf("upsert claim->calculation edge %s: %w", c.CalcID, err)
		}
	}

	return nil
}

// finalize maps a projection attempt's outcome to the SKIPPED/COMPLETED/
// FAILED/AUDIT_FAILURE state machine (spec.md §4.6). On failure it emits a
// HIGH-severity graph_projection.<resourceType>.failed audit event; if that
// emission itself fails, the compound AUDIT_FAILURE status is returned.
func (s *ProjectionService) finalize(ctx context.Context, tenantID, resourceType, resourceID string, projErr error) Result {
	if projErr == nil {
		return Result{Status: StatusCompleted}
	}

	ev, buildErr := audit.Build(audit.BuildParams{
		TenantID:     tenantID,
		Actor:        domainaudit.Actor{ActorType: domainaudit.ActorService, ActorID: "graph_projection"},
		RequestID:    resourceID,
		Method:       "PROJECT",
		Path:         fmt.Sprintf("/internal/graph_projection/%s", resourceType),
		StatusCode:   500,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		EventType:    fmt.Sprintf("graph_projection.%s.failed", resourceType),
		Severity:     domainaudit.SeverityHigh,
		Summary:      fmt.Sprintf("graph projection failed for %s %s", resourceType, resourceID),
		Safe:         map[string]interface{}{"error": projErr.Error()},
	})
	if buildErr == nil {
		buildErr = s.auditor.Emit(ctx, ev)
	}
	if buildErr != nil {
		return Result{Status: StatusAuditFailure, Err: fmt.Errorf("projection failed (%v) and failure audit also failed: %w", projErr, buildErr)}
	}

	return Result{Status: StatusFailed, Err: projErr}
}
