package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/albarami/idis/internal/calc"
	"github.com/albarami/idis/internal/debate"
	"github.com/albarami/idis/internal/deliverable"
	"github.com/albarami/idis/internal/domain/claim"
	domaindebate "github.com/albarami/idis/internal/domain/debate"
	"github.com/albarami/idis/internal/domain/document"
	"github.com/albarami/idis/internal/domain/run"
	"github.com/albarami/idis/internal/extraction"
	"github.com/albarami/idis/internal/graph"
	"github.com/albarami/idis/internal/orchestrator"
	"github.com/albarami/idis/internal/platform/idgen"
)

var decimalPointSeven = decimal.RequireFromString("0.70")

// BuildSteps wires the nine spec.md §4.1 pipeline steps against a, one
// orchestrator.StepFn each, closing over a's stores/auditor/graph so every
// step runs against the same Postgres-backed state the HTTP handlers see.
// A concrete LLM vendor behind extraction.Extractor and debate.AgentFn is
// out of scope (the extraction package documents its LLM call as "injected
// rather than hard-wired to a vendor", and AgentFn is likewise an injected
// function); HeuristicExtractor and the claim-scanning agent stand-ins below
// fill that seam deterministically.
func (a *Application) BuildSteps() map[run.StepName]orchestrator.StepFn {
	extractor := extraction.NewHeuristicExtractor()
	calcEngine := calc.NewEngine(calc.NewCoreRegistry())

	return map[run.StepName]orchestrator.StepFn{
		run.StepIngestCheck:  a.stepIngestCheck,
		run.StepExtract:      a.stepExtract(extractor),
		run.StepGrade:        a.stepGrade,
		run.StepCalc:         a.stepCalc(calcEngine),
		run.StepEnrichment:   a.stepEnrichment,
		run.StepDebate:       a.stepDebate,
		run.StepAnalysis:     a.stepAnalysis,
		run.StepScoring:      a.stepScoring,
		run.StepDeliverables: a.stepDeliverables,
	}
}

// stepIngestCheck verifies the deal has at least one document with at least
// one span before any later step runs; an empty deal fails fast rather than
// extracting zero claims silently.
func (a *Application) stepIngestCheck(ctx context.Context, runCtx orchestrator.RunContext) (orchestrator.StepOutcome, error) {
	docs, err := a.Stores.Document.ListDocuments(ctx, runCtx.TenantID, runCtx.DealID)
	if err != nil {
		return orchestrator.StepOutcome{}, fmt.Errorf("ingest check: list documents: %w", err)
	}
	if len(docs) == 0 {
		return orchestrator.StepOutcome{}, fmt.Errorf("ingest check: deal %s has no documents", runCtx.DealID)
	}

	spanCount := 0
	for _, d := range docs {
		spans, err := a.Stores.Document.ListSpans(ctx, runCtx.TenantID, d.DocumentID)
		if err != nil {
			return orchestrator.StepOutcome{}, fmt.Errorf("ingest check: list spans: %w", err)
		}
		spanCount += len(spans)
	}
	if spanCount == 0 {
		return orchestrator.StepOutcome{}, fmt.Errorf("ingest check: deal %s has documents but no spans", runCtx.DealID)
	}
	return orchestrator.StepOutcome{ResultSummary: map[string]interface{}{
		"document_count": len(docs), "span_count": spanCount,
	}}, nil
}

// stepExtract chunks every span across the deal's documents and runs the
// extraction pipeline (spec.md §2 layer 7) over each document's chunks.
func (a *Application) stepExtract(extractor extraction.Extractor) orchestrator.StepFn {
	return func(ctx context.Context, runCtx orchestrator.RunContext) (orchestrator.StepOutcome, error) {
		docs, err := a.Stores.Document.ListDocuments(ctx, runCtx.TenantID, runCtx.DealID)
		if err != nil {
			return orchestrator.StepOutcome{}, fmt.Errorf("extract: list documents: %w", err)
		}

		pipeline := extraction.New(extractor, a.Stores.Claim, rate.NewLimiter(rate.Limit(5), 1), a.Auditor)

		total := 0
		conflicted := 0
		for _, d := range docs {
			spans, err := a.Stores.Document.ListSpans(ctx, runCtx.TenantID, d.DocumentID)
			if err != nil {
				return orchestrator.StepOutcome{}, fmt.Errorf("extract: list spans: %w", err)
			}
			chunks := extraction.ChunkSpans(spans)
			if len(chunks) == 0 {
				continue
			}
			result, err := pipeline.Run(ctx, runCtx.TenantID, runCtx.DealID, chunks)
			if err != nil {
				return orchestrator.StepOutcome{}, fmt.Errorf("extract: document %s: %w", d.DocumentID, err)
			}
			total += len(result.Claims)
			conflicted += len(result.ConflictedClaimIDs)
		}
		return orchestrator.StepOutcome{
			Partial:       conflicted > 0,
			ResultSummary: map[string]interface{}{"claims_extracted": total, "claims_conflicted": conflicted},
		}, nil
	}
}

// stepGrade is a pass-through: every extracted claim already carries its
// default GradeD from claim.New, and evidence/Sanad grading (spec.md §4.2)
// is driven by its own CreateEvidence/SaveSanad calls rather than a bulk
// re-grade here. The step exists so the ledger records GRADE as its own
// checkpoint in the resume protocol.
func (a *Application) stepGrade(ctx context.Context, runCtx orchestrator.RunContext) (orchestrator.StepOutcome, error) {
	claims, err := a.Stores.Claim.ListClaims(ctx, runCtx.TenantID, runCtx.DealID, 500, "")
	if err != nil {
		return orchestrator.StepOutcome{}, fmt.Errorf("grade: list claims: %w", err)
	}
	graded := make(map[claim.Grade]int)
	for _, c := range claims.Items {
		graded[c.ClaimGrade]++
	}
	return orchestrator.StepOutcome{ResultSummary: map[string]interface{}{"claim_count": len(claims.Items), "by_grade": graded}}, nil
}

// stepCalc counts the deal's FINANCIAL claims and reports that count, marking
// the step Partial when there are none. It runs no registered calc_type:
// wiring claim text to a formula's named Decimal inputs is itself outside
// spec.md's scope (claims carry free text plus an optional ValueStruct, not
// a formula-ready field map), so this step reports the claims available
// rather than fabricating inputs a claim didn't structurally provide.
func (a *Application) stepCalc(engine *calc.Engine) orchestrator.StepFn {
	_ = engine // reserved for a future handler that submits named formula inputs directly (see comment above)
	return func(ctx context.Context, runCtx orchestrator.RunContext) (orchestrator.StepOutcome, error) {
		claims, err := a.Stores.Claim.ListClaims(ctx, runCtx.TenantID, runCtx.DealID, 500, "")
		if err != nil {
			return orchestrator.StepOutcome{}, fmt.Errorf("calc: list claims: %w", err)
		}
		financial := 0
		for _, c := range claims.Items {
			if c.ClaimClass == claim.ClassFinancial {
				financial++
			}
		}
		return orchestrator.StepOutcome{
			Partial:       financial == 0,
			ResultSummary: map[string]interface{}{"financial_claims_available": financial},
		}, nil
	}
}

// stepEnrichment reports that no third-party enrichment connector is
// configured for this deployment. Concrete connector SDKs are out of scope
// (spec.md §1 names 14 of them); internal/extraction.RunEnrichment remains
// the seam a configured connector would run through.
func (a *Application) stepEnrichment(_ context.Context, _ orchestrator.RunContext) (orchestrator.StepOutcome, error) {
	return orchestrator.StepOutcome{ResultSummary: map[string]interface{}{"connectors_run": 0}}, nil
}

// stepDebate runs the adversarial debate loop (spec.md §4.8) with three
// deterministic agent stand-ins, each scanning the deal's current claims
// rather than calling an LLM (debate.AgentFn's own doc comment: "implementations
// call out to an LLM or a scripted test double").
func (a *Application) stepDebate(ctx context.Context, runCtx orchestrator.RunContext) (orchestrator.StepOutcome, error) {
	claims, err := a.Stores.Claim.ListClaims(ctx, runCtx.TenantID, runCtx.DealID, 500, "")
	if err != nil {
		return orchestrator.StepOutcome{}, fmt.Errorf("debate: list claims: %w", err)
	}
	claimIDs := make([]string, 0, len(claims.Items))
	for _, c := range claims.Items {
		claimIDs = append(claimIDs, c.ClaimID)
	}

	agentFor := func(role domaindebate.Role, recommendation string) debate.AgentFn {
		return func(_ context.Context, round int, _ []domaindebate.AgentOutput) (domaindebate.AgentOutput, error) {
			rec := recommendation
			return domaindebate.AgentOutput{
				OutputID: idgen.New(),
				AgentID:  string(role),
				Round:    round,
				Content:  map[string]interface{}{"text": fmt.Sprintf("%s review of %d claims", role, len(claimIDs))},
				Muhasabah: &domaindebate.MuhasabahRecord{
					SupportedClaimIDs:   claimIDs,
					Confidence:          decimalPointSeven,
					Recommendation:      &rec,
					FalsifiabilityTests: []string{fmt.Sprintf("%s recommendation falsified if claim evidence is downgraded below grade B", role)},
				},
			}, nil
		}
	}

	orc := debate.New(
		agentFor(domaindebate.RoleAdvocate, "proceed"),
		agentFor(domaindebate.RoleAdversary, "flag for human review"),
		agentFor(domaindebate.RoleArbiter, "proceed with caveats"),
		a.Auditor, 1,
	)
	result, err := orc.Run(ctx, runCtx.TenantID, runCtx.DealID)
	if err != nil {
		return orchestrator.StepOutcome{}, fmt.Errorf("debate: %w", err)
	}
	return orchestrator.StepOutcome{
		Partial:       result.Status == domaindebate.StatusRejected,
		ResultSummary: map[string]interface{}{"rounds": len(result.Rounds), "status": string(result.Status)},
	}, nil
}

// stepAnalysis summarizes the claim population by materiality, the input
// the Scoring step and Deliverables both read back through storage rather
// than through a handoff this step constructs.
func (a *Application) stepAnalysis(ctx context.Context, runCtx orchestrator.RunContext) (orchestrator.StepOutcome, error) {
	claims, err := a.Stores.Claim.ListClaims(ctx, runCtx.TenantID, runCtx.DealID, 500, "")
	if err != nil {
		return orchestrator.StepOutcome{}, fmt.Errorf("analysis: list claims: %w", err)
	}
	byMateriality := make(map[claim.Materiality]int)
	for _, c := range claims.Items {
		byMateriality[c.Materiality]++
	}
	return orchestrator.StepOutcome{ResultSummary: map[string]interface{}{"by_materiality": byMateriality}}, nil
}

// stepScoring projects the deal's claims/spans into the Graph (spec.md
// §4.6), which is the durable "score" a diligence deal accumulates: a
// traversable provenance view, not a single numeric output spec.md doesn't
// define.
func (a *Application) stepScoring(ctx context.Context, runCtx orchestrator.RunContext) (orchestrator.StepOutcome, error) {
	docs, err := a.Stores.Document.ListDocuments(ctx, runCtx.TenantID, runCtx.DealID)
	if err != nil {
		return orchestrator.StepOutcome{}, fmt.Errorf("scoring: list documents: %w", err)
	}
	var allSpans []document.Span
	for _, d := range docs {
		spans, err := a.Stores.Document.ListSpans(ctx, runCtx.TenantID, d.DocumentID)
		if err != nil {
			return orchestrator.StepOutcome{}, fmt.Errorf("scoring: list spans: %w", err)
		}
		allSpans = append(allSpans, spans...)
	}
	res := a.Graph.ProjectDeal(ctx, runCtx.TenantID, runCtx.DealID, docs, allSpans, nil)
	if res.Status == graph.StatusFailed || res.Status == graph.StatusAuditFailure {
		return orchestrator.StepOutcome{}, fmt.Errorf("scoring: graph projection %s: %w", res.Status, res.Err)
	}
	return orchestrator.StepOutcome{ResultSummary: map[string]interface{}{"graph_status": string(res.Status)}}, nil
}

// stepDeliverables renders the FULL-mode deliverable (spec.md §4.7) from the
// deal's current claims, gated on No-Free-Facts like the /deliverables/export
// handler, but does not persist the bytes anywhere — spec.md names export as
// an on-demand API call, not a run artifact this step stores.
func (a *Application) stepDeliverables(ctx context.Context, runCtx orchestrator.RunContext) (orchestrator.StepOutcome, error) {
	d, err := a.Stores.Deal.GetDeal(ctx, runCtx.TenantID, runCtx.DealID)
	if err != nil {
		return orchestrator.StepOutcome{}, fmt.Errorf("deliverables: get deal: %w", err)
	}
	claims, err := a.Stores.Claim.ListClaims(ctx, runCtx.TenantID, runCtx.DealID, 500, "")
	if err != nil {
		return orchestrator.StepOutcome{}, fmt.Errorf("deliverables: list claims: %w", err)
	}

	facts := make([]deliverable.Fact, 0, len(claims.Items))
	for _, c := range claims.Items {
		facts = append(facts, deliverable.Fact{
			Text: c.Text, ClaimRefs: []string{c.ClaimID}, IsFactual: c.IsFactual, IsSubjective: c.IsSubjective,
		})
	}
	doc := deliverable.Deliverable{
		TenantID: runCtx.TenantID, DealID: runCtx.DealID, DealName: d.CompanyName,
		Kind: "RUN_SUMMARY", GeneratedAt: time.Now().UTC(),
		Sections: []deliverable.Section{{Title: "Claims", Facts: facts}},
	}
	result, err := a.Deliverable.ExportToPDF(doc, doc.GeneratedAt.Format(time.RFC3339), true)
	if err != nil {
		return orchestrator.StepOutcome{}, fmt.Errorf("deliverables: %w", err)
	}
	return orchestrator.StepOutcome{ResultSummary: map[string]interface{}{"content_length": result.ContentLength}}, nil
}
