// Package storage defines the persistence contracts for every IDIS entity.
// Every method is tenant-scoped: a lookup under the wrong tenant_id must
// behave identically to a lookup of a nonexistent ID (spec.md §8 property 4
// "a GET under a different tenant returns 404"), so every Get/List signature
// takes tenantID explicitly rather than trusting a global ID space.
package storage

import (
	"context"
	"time"

	"github.com/albarami/idis/internal/deliverable"
	"github.com/albarami/idis/internal/domain/calc"
	"github.com/albarami/idis/internal/domain/claim"
	"github.com/albarami/idis/internal/domain/deal"
	"github.com/albarami/idis/internal/domain/defect"
	"github.com/albarami/idis/internal/domain/document"
	"github.com/albarami/idis/internal/domain/evidence"
	"github.com/albarami/idis/internal/domain/run"
	"github.com/albarami/idis/internal/domain/sanad"
	"github.com/albarami/idis/internal/security"
)

// Page is a cursor-paginated result set (spec.md §6 "Pagination").
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// DealStore persists Deal entities.
type DealStore interface {
	CreateDeal(ctx context.Context, d deal.Deal) (deal.Deal, error)
	UpdateDeal(ctx context.Context, d deal.Deal) (deal.Deal, error)
	GetDeal(ctx context.Context, tenantID, dealID string) (deal.Deal, error)
	ListDeals(ctx context.Context, tenantID string, limit int, cursor string) (Page[deal.Deal], error)
}

// DocumentStore persists Document and Span entities.
type DocumentStore interface {
	CreateDocument(ctx context.Context, d document.Document) (document.Document, error)
	GetDocument(ctx context.Context, tenantID, documentID string) (document.Document, error)
	ListDocuments(ctx context.Context, tenantID, dealID string) ([]document.Document, error)
	LatestDocumentVersion(ctx context.Context, tenantID, dealID, filename string) (document.Document, error)

	CreateSpan(ctx context.Context, s document.Span) (document.Span, error)
	GetSpan(ctx context.Context, tenantID, spanID string) (document.Span, error)
	ListSpans(ctx context.Context, tenantID, documentID string) ([]document.Span, error)
}

// ClaimStore persists Claim entities.
type ClaimStore interface {
	CreateClaim(ctx context.Context, c claim.Claim) (claim.Claim, error)
	UpdateClaim(ctx context.Context, c claim.Claim) (claim.Claim, error)
	GetClaim(ctx context.Context, tenantID, claimID string) (claim.Claim, error)
	ListClaims(ctx context.Context, tenantID, dealID string, limit int, cursor string) (Page[claim.Claim], error)
	// DealIDForClaim resolves a claim to its owning deal under tenant scope,
	// used by internal/security.ResolveClaimToDeal (spec.md §4.4 gate 5).
	DealIDForClaim(ctx context.Context, tenantID, claimID string) (string, error)
}

// EvidenceStore persists Evidence entities.
type EvidenceStore interface {
	CreateEvidence(ctx context.Context, e evidence.Evidence) (evidence.Evidence, error)
	GetEvidence(ctx context.Context, tenantID, evidenceID string) (evidence.Evidence, error)
	ListEvidenceForClaim(ctx context.Context, tenantID, claimID string) ([]evidence.Evidence, error)
}

// SanadStore persists Sanad entities (the transmission DAG and its derived
// grade/corroboration attributes).
type SanadStore interface {
	SaveSanad(ctx context.Context, s sanad.Sanad) (sanad.Sanad, error)
	GetSanad(ctx context.Context, tenantID, sanadID string) (sanad.Sanad, error)
	GetSanadForClaim(ctx context.Context, tenantID, claimID string) (sanad.Sanad, error)
}

// DefectStore persists Defect entities.
type DefectStore interface {
	CreateDefect(ctx context.Context, d defect.Defect) (defect.Defect, error)
	UpdateDefect(ctx context.Context, d defect.Defect) (defect.Defect, error)
	GetDefect(ctx context.Context, tenantID, defectID string) (defect.Defect, error)
	ListDefectsForSanad(ctx context.Context, tenantID, sanadID string) ([]defect.Defect, error)
}

// CalcStore persists DeterministicCalculation and CalcSanad entities.
type CalcStore interface {
	SaveCalculation(ctx context.Context, c calc.DeterministicCalculation) (calc.DeterministicCalculation, error)
	GetCalculation(ctx context.Context, tenantID, calcID string) (calc.DeterministicCalculation, error)
	SaveCalcSanad(ctx context.Context, s calc.CalcSanad) (calc.CalcSanad, error)
	GetCalcSanad(ctx context.Context, tenantID, calcID string) (calc.CalcSanad, error)
}

// RunStore persists Run and RunStep entities. It implements
// internal/orchestrator.Store directly, since the orchestrator needs no
// capability beyond these three operations.
type RunStore interface {
	CreateRun(ctx context.Context, r run.Run) (run.Run, error)
	GetRun(ctx context.Context, tenantID, runID string) (run.Run, error)
	ListRunsForDeal(ctx context.Context, tenantID, dealID string) ([]run.Run, error)
	SaveStep(ctx context.Context, step run.RunStep) error
	SaveRunStatus(ctx context.Context, tenantID, runID string, status run.Status) error
}

// DeliverableStore persists exported Deliverable metadata (spec.md §3
// Lifecycle), so a DELIVERABLES-class retention policy and legal hold have
// a concrete row to govern and a hard delete has something to remove.
type DeliverableStore interface {
	CreateDeliverable(ctx context.Context, d deliverable.Record) (deliverable.Record, error)
	GetDeliverable(ctx context.Context, tenantID, deliverableID string) (deliverable.Record, error)
	ListDeliverablesForDeal(ctx context.Context, tenantID, dealID string) ([]deliverable.Record, error)
	DeleteDeliverable(ctx context.Context, tenantID, deliverableID string) error
	// ListExpired returns every deliverable generated before cutoff, across
	// all tenants — the retention-sweep job's candidate set, filtered
	// against active legal holds before anything is deleted.
	ListExpired(ctx context.Context, cutoff time.Time) ([]deliverable.Record, error)
}

// Stores aggregates every entity store behind a single handle, the shape
// internal/app.Application composes its storage layer from.
type Stores struct {
	Deal        DealStore
	Document    DocumentStore
	Claim       ClaimStore
	Evidence    EvidenceStore
	Sanad       SanadStore
	Defect      DefectStore
	Calc        CalcStore
	Run         RunStore
	Deliverable DeliverableStore
	LegalHold   security.HoldStore
	BYOKKeys    security.KeyStore
}
