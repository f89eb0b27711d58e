package extraction

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/albarami/idis/internal/audit"
	domainaudit "github.com/albarami/idis/internal/domain/audit"
	"github.com/albarami/idis/internal/domain/claim"
	"github.com/albarami/idis/internal/platform/idgen"
	"github.com/albarami/idis/internal/storage"
)

// Pipeline runs the chunk → extract → dedupe → persist sequence (spec.md §2
// layer 7) over one document's spans.
type Pipeline struct {
	extractor Extractor
	claims    storage.ClaimStore
	limiter   *rate.Limiter
	auditor   *audit.Pipeline
}

// New builds a Pipeline. limiter bounds the rate of extractor calls (spec.md
// §5: "LLM calls have bounded timeouts"); pass rate.NewLimiter(rate.Inf, 0)
// for an unbounded test double.
func New(extractor Extractor, claims storage.ClaimStore, limiter *rate.Limiter, auditor *audit.Pipeline) *Pipeline {
	return &Pipeline{extractor: extractor, claims: claims, limiter: limiter, auditor: auditor}
}

// Result is the outcome of running the pipeline over one document.
type Result struct {
	Claims             []claim.Claim
	ConflictedClaimIDs []string
}

// Run chunks spans, extracts claim candidates from each chunk, deduplicates
// within each chunk, assigns claim_action from extraction confidence,
// detects cross-claim value conflicts over the whole document, persists
// every claim, and emits one extraction.claim.created audit event per
// persisted claim. Callers build chunks via ChunkSpans over a document's
// spans (already loaded from storage.DocumentStore).
func (p *Pipeline) Run(ctx context.Context, tenantID, dealID string, chunks []Chunk) (Result, error) {
	var persisted []claim.Claim

	for _, chunk := range chunks {
		if err := p.limiter.Wait(ctx); err != nil {
			return Result{}, fmt.Errorf("extraction: rate limit wait: %w", err)
		}
		candidates, err := p.extractor.ExtractClaims(ctx, chunk)
		if err != nil {
			return Result{}, fmt.Errorf("extraction: extract chunk %v: %w", chunk.SpanIDs, err)
		}
		candidates = Deduplicate(candidates)

		for _, c := range candidates {
			cl := claim.New(tenantID, dealID, c.Class)
			cl.ClaimID = idgen.New()
			cl.Text = c.Text
			cl.Value = c.Value
			cl.PrimarySpanID = c.PrimarySpanID
			cl.ExtractionConfidence = c.ExtractionConfidence
			cl.DhabtScore = c.DhabtScore
			cl.IsFactual = c.IsFactual
			cl.IsSubjective = c.IsSubjective
			cl.ClaimAction = ActionForConfidence(c.ExtractionConfidence)
			if cl.IsSubjective {
				cl.ClaimVerdict = claim.VerdictSubjective
			}
			persisted = append(persisted, cl)
		}
	}

	conflicted := DetectConflicts(persisted)
	conflictSet := make(map[string]bool, len(conflicted))
	for _, id := range conflicted {
		conflictSet[id] = true
	}

	out := make([]claim.Claim, 0, len(persisted))
	for _, cl := range persisted {
		if conflictSet[cl.ClaimID] {
			cl.ClaimVerdict = claim.VerdictContradicted
		}
		saved, err := p.claims.CreateClaim(ctx, cl)
		if err != nil {
			return Result{}, fmt.Errorf("extraction: persist claim: %w", err)
		}
		if err := p.emitClaimCreated(ctx, saved); err != nil {
			return Result{}, err
		}
		out = append(out, saved)
	}

	return Result{Claims: out, ConflictedClaimIDs: conflicted}, nil
}

func (p *Pipeline) emitClaimCreated(ctx context.Context, cl claim.Claim) error {
	ev, err := audit.Build(audit.BuildParams{
		TenantID:     cl.TenantID,
		Actor:        domainaudit.Actor{ActorType: domainaudit.ActorService, ActorID: "extraction-pipeline"},
		RequestID:    idgen.New(),
		Method:       "INTERNAL",
		Path:         "extraction/claim",
		StatusCode:   201,
		ResourceType: "CLAIM",
		ResourceID:   cl.ClaimID,
		EventType:    "extraction.claim.created",
		Severity:     domainaudit.SeverityLow,
		Summary:      fmt.Sprintf("extracted %s claim with action %s", cl.ClaimClass, cl.ClaimAction),
	})
	if err != nil {
		return err
	}
	return p.auditor.Emit(ctx, ev)
}
