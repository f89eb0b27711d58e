package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/albarami/idis/internal/app"
	"github.com/albarami/idis/internal/dashboard"
	"github.com/albarami/idis/internal/deliverable"
	"github.com/albarami/idis/internal/domain/audit"
	"github.com/albarami/idis/internal/domain/claim"
	"github.com/albarami/idis/internal/domain/deal"
	"github.com/albarami/idis/internal/domain/document"
	"github.com/albarami/idis/internal/domain/evidence"
	"github.com/albarami/idis/internal/domain/run"
	"github.com/albarami/idis/internal/orchestrator"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/security"
)

// handlers holds the single Application every route handler reads and
// writes through, mirroring the teacher's one-struct-per-router-family
// handler grouping.
type handlers struct {
	a *app.Application
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.InvalidJSON(err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireDealAccess runs gates 4 (ABAC) against dealID for the authenticated
// tenant, after gates 1-3 already ran in the middleware chain.
func (h *handlers) requireDealAccess(w http.ResponseWriter, r *http.Request, dealID string) (security.TenantContext, bool) {
	tc, ok := tenantContextFrom(r.Context())
	if !ok {
		writeError(w, r, apperr.Unauthorized("missing tenant context"))
		return tc, false
	}
	if err := security.CheckDealAccess(r.Context(), h.a.Access, h.a.Access, tc, dealID); err != nil {
		writeError(w, r, err)
		return tc, false
	}
	return tc, true
}

// --- Deals ---

type createDealRequest struct {
	CompanyName string   `json:"company_name"`
	Stage       string   `json:"stage"`
	Tags        []string `json:"tags,omitempty"`
}

func (h *handlers) createDeal(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantContextFrom(r.Context())
	if !ok {
		writeError(w, r, apperr.Unauthorized("missing tenant context"))
		return
	}
	var req createDealRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.CompanyName == "" || req.Stage == "" {
		writeError(w, r, apperr.ValidationFailed([]string{"company_name", "stage"}))
		return
	}

	d := deal.New(tc.TenantID, req.CompanyName, deal.Stage(req.Stage))
	d.Tags = req.Tags
	created, err := h.a.Stores.Deal.CreateDeal(r.Context(), d)
	if err != nil {
		writeError(w, r, err)
		return
	}

	*r = *withAuditResult(r, AuditResult{
		EventType:    "deal.created",
		ResourceType: "DEAL",
		ResourceID:   created.DealID,
		Severity:     audit.SeverityLow,
		Summary:      "deal created",
		Safe:         map[string]interface{}{"stage": created.Stage},
	})
	writeJSON(w, http.StatusCreated, created)
}

func (h *handlers) getDeal(w http.ResponseWriter, r *http.Request) {
	dealID := mux.Vars(r)["dealID"]
	tc, ok := h.requireDealAccess(w, r, dealID)
	if !ok {
		return
	}
	d, err := h.a.Stores.Deal.GetDeal(r.Context(), tc.TenantID, dealID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handlers) listDeals(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantContextFrom(r.Context())
	if !ok {
		writeError(w, r, apperr.Unauthorized("missing tenant context"))
		return
	}
	page, err := h.a.Stores.Deal.ListDeals(r.Context(), tc.TenantID, 50, r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// --- Documents ---

type createDocumentRequest struct {
	Format   string `json:"format"`
	Filename string `json:"filename"`
}

func (h *handlers) createDocument(w http.ResponseWriter, r *http.Request) {
	dealID := mux.Vars(r)["dealID"]
	tc, ok := h.requireDealAccess(w, r, dealID)
	if !ok {
		return
	}
	var req createDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Format == "" || req.Filename == "" {
		writeError(w, r, apperr.ValidationFailed([]string{"format", "filename"}))
		return
	}

	doc := document.Document{
		TenantID: tc.TenantID,
		DealID:   dealID,
		Format:   document.Format(req.Format),
		Filename: req.Filename,
		Version:  1,
	}
	created, err := h.a.Stores.Document.CreateDocument(r.Context(), doc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	*r = *withAuditResult(r, AuditResult{
		EventType:    "document.created",
		ResourceType: "DOCUMENT",
		ResourceID:   created.DocumentID,
		Severity:     audit.SeverityLow,
		Summary:      "document created",
		Safe:         map[string]interface{}{"filename": created.Filename, "format": created.Format},
	})
	writeJSON(w, http.StatusCreated, created)
}

func (h *handlers) listDocuments(w http.ResponseWriter, r *http.Request) {
	dealID := mux.Vars(r)["dealID"]
	tc, ok := h.requireDealAccess(w, r, dealID)
	if !ok {
		return
	}
	docs, err := h.a.Stores.Document.ListDocuments(r.Context(), tc.TenantID, dealID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// --- Claims ---

type createClaimRequest struct {
	DealID string `json:"deal_id"`
	Class  string `json:"claim_class"`
	Text   string `json:"text"`
}

func (h *handlers) createClaim(w http.ResponseWriter, r *http.Request) {
	var req createClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.DealID == "" || req.Class == "" || req.Text == "" {
		writeError(w, r, apperr.ValidationFailed([]string{"deal_id", "claim_class", "text"}))
		return
	}
	tc, ok := h.requireDealAccess(w, r, req.DealID)
	if !ok {
		return
	}

	c := claim.New(tc.TenantID, req.DealID, claim.Class(req.Class))
	c.Text = req.Text
	created, err := h.a.Stores.Claim.CreateClaim(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}

	*r = *withAuditResult(r, AuditResult{
		EventType:    "claim.created",
		ResourceType: "CLAIM",
		ResourceID:   created.ClaimID,
		Severity:     audit.SeverityLow,
		Summary:      "claim created",
		Refs:         []string{created.ClaimID},
		Safe:         map[string]interface{}{"claim_class": created.ClaimClass},
	})
	writeJSON(w, http.StatusCreated, created)
}

// requireClaimAccess resolves claimID to its owning deal, then runs the
// same ABAC check createClaim/createDocument run directly against a
// deal_id (spec.md §4.4 gate 5).
func (h *handlers) requireClaimAccess(w http.ResponseWriter, r *http.Request, claimID string) (security.TenantContext, bool) {
	tc, ok := tenantContextFrom(r.Context())
	if !ok {
		writeError(w, r, apperr.Unauthorized("missing tenant context"))
		return tc, false
	}
	dealID, err := security.ResolveClaimToDeal(r.Context(), h.a.Access, tc.TenantID, claimID)
	if err != nil {
		if security.IsUnknownDeal(err) {
			writeError(w, r, apperr.DeniedUnknownOrOutOfScope())
			return tc, false
		}
		writeError(w, r, err)
		return tc, false
	}
	if err := security.CheckDealAccess(r.Context(), h.a.Access, h.a.Access, tc, dealID); err != nil {
		writeError(w, r, err)
		return tc, false
	}
	return tc, true
}

func (h *handlers) getClaim(w http.ResponseWriter, r *http.Request) {
	claimID := mux.Vars(r)["claimID"]
	tc, ok := h.requireClaimAccess(w, r, claimID)
	if !ok {
		return
	}
	c, err := h.a.Stores.Claim.GetClaim(r.Context(), tc.TenantID, claimID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// --- Evidence ---

type createEvidenceRequest struct {
	SourceSpanID string `json:"source_span_id"`
	SourceGrade  string `json:"source_grade"`
	SourceSystem string `json:"source_system"`
}

func (h *handlers) createEvidence(w http.ResponseWriter, r *http.Request) {
	claimID := mux.Vars(r)["claimID"]
	tc, ok := h.requireClaimAccess(w, r, claimID)
	if !ok {
		return
	}
	var req createEvidenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.SourceSpanID == "" || req.SourceGrade == "" {
		writeError(w, r, apperr.ValidationFailed([]string{"source_span_id", "source_grade"}))
		return
	}

	e := evidence.Evidence{
		TenantID:           tc.TenantID,
		ClaimID:            claimID,
		SourceSpanID:       req.SourceSpanID,
		SourceGrade:        claim.Grade(req.SourceGrade),
		SourceSystem:       req.SourceSystem,
		VerificationStatus: evidence.VerificationUnverified,
	}
	created, err := h.a.Stores.Evidence.CreateEvidence(r.Context(), e)
	if err != nil {
		writeError(w, r, err)
		return
	}

	*r = *withAuditResult(r, AuditResult{
		EventType:    "evidence.created",
		ResourceType: "EVIDENCE",
		ResourceID:   created.EvidenceID,
		Severity:     audit.SeverityLow,
		Summary:      "evidence created",
		Refs:         []string{claimID},
		Safe:         map[string]interface{}{"source_grade": created.SourceGrade},
	})
	writeJSON(w, http.StatusCreated, created)
}

func (h *handlers) listEvidence(w http.ResponseWriter, r *http.Request) {
	claimID := mux.Vars(r)["claimID"]
	tc, ok := h.requireClaimAccess(w, r, claimID)
	if !ok {
		return
	}
	items, err := h.a.Stores.Evidence.ListEvidenceForClaim(r.Context(), tc.TenantID, claimID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// --- Runs ---

type createRunRequest struct {
	DealID string `json:"deal_id"`
	Mode   string `json:"mode"`
}

func (h *handlers) createRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.DealID == "" || req.Mode == "" {
		writeError(w, r, apperr.ValidationFailed([]string{"deal_id", "mode"}))
		return
	}
	tc, ok := h.requireDealAccess(w, r, req.DealID)
	if !ok {
		return
	}

	mode := run.Mode(req.Mode)
	steps := run.StepsFor(mode)
	runSteps := make([]run.RunStep, len(steps))
	for i, name := range steps {
		runSteps[i] = run.RunStep{TenantID: tc.TenantID, StepName: name, StepOrder: i, Status: run.StepStatusPending}
	}
	created, err := h.a.Stores.Run.CreateRun(r.Context(), run.Run{
		TenantID: tc.TenantID,
		DealID:   req.DealID,
		Mode:     mode,
		Status:   run.StatusQueued,
		Steps:    runSteps,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	*r = *withAuditResult(r, AuditResult{
		EventType:    "run.created",
		ResourceType: "RUN",
		ResourceID:   created.RunID,
		Severity:     audit.SeverityLow,
		Summary:      "run queued",
		Safe:         map[string]interface{}{"mode": created.Mode},
	})
	writeJSON(w, http.StatusAccepted, created)

	if h.a.Orchestrator != nil {
		docs, err := h.a.Stores.Document.ListDocuments(r.Context(), tc.TenantID, req.DealID)
		if err != nil {
			h.a.Log.WithError(err).WithFields(map[string]interface{}{"run_id": created.RunID}).
				Error("list documents for run failed")
			return
		}
		docIDs := make([]string, len(docs))
		for i, d := range docs {
			docIDs[i] = d.DocumentID
		}
		runCtx := orchestrator.RunContext{
			RunID:     created.RunID,
			TenantID:  tc.TenantID,
			DealID:    req.DealID,
			Mode:      mode,
			Documents: docIDs,
		}
		go func() {
			_, _ = h.a.Orchestrator.Execute(context.Background(), runCtx)
		}()
	}
}

func (h *handlers) getRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["runID"]
	tc, ok := tenantContextFrom(r.Context())
	if !ok {
		writeError(w, r, apperr.Unauthorized("missing tenant context"))
		return
	}
	rn, err := h.a.Stores.Run.GetRun(r.Context(), tc.TenantID, runID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, ok := h.requireDealAccess(w, r, rn.DealID); !ok {
		return
	}
	writeJSON(w, http.StatusOK, rn)
}

// --- Deliverables ---

type exportDeliverableRequest struct {
	Kind                 string `json:"kind"`
	Format               string `json:"format"`
	IncludeAuditAppendix bool   `json:"include_audit_appendix"`
}

// exportDeliverable implements spec.md §4.7: assemble a Deliverable from the
// deal's current claims, then render it, gated on No-Free-Facts.
func (h *handlers) exportDeliverable(w http.ResponseWriter, r *http.Request) {
	dealID := mux.Vars(r)["dealID"]
	tc, ok := h.requireDealAccess(w, r, dealID)
	if !ok {
		return
	}
	var req exportDeliverableRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Kind == "" {
		req.Kind = "SNAPSHOT"
	}

	d, err := h.a.Stores.Deal.GetDeal(r.Context(), tc.TenantID, dealID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	claims, err := h.a.Stores.Claim.ListClaims(r.Context(), tc.TenantID, dealID, 500, "")
	if err != nil {
		writeError(w, r, err)
		return
	}

	facts := make([]deliverable.Fact, 0, len(claims.Items))
	for _, c := range claims.Items {
		facts = append(facts, deliverable.Fact{
			Text:         c.Text,
			ClaimRefs:    []string{c.ClaimID},
			IsFactual:    c.IsFactual,
			IsSubjective: c.IsSubjective,
		})
	}
	doc := deliverable.Deliverable{
		TenantID:    tc.TenantID,
		DealID:      dealID,
		DealName:    d.CompanyName,
		Kind:        req.Kind,
		GeneratedAt: time.Now().UTC(),
		Sections:    []deliverable.Section{{Title: "Claims", Facts: facts}},
	}

	exportTimestamp := doc.GeneratedAt.Format(time.RFC3339)
	var result deliverable.Result
	switch strings.ToUpper(req.Format) {
	case "DOCX":
		result, err = h.a.Deliverable.ExportToDOCX(doc, exportTimestamp, req.IncludeAuditAppendix)
	default:
		result, err = h.a.Deliverable.ExportToPDF(doc, exportTimestamp, req.IncludeAuditAppendix)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := h.a.Stores.Deliverable.CreateDeliverable(r.Context(), deliverable.Record{
		TenantID:     tc.TenantID,
		DealID:       dealID,
		Kind:         req.Kind,
		Format:       result.Format,
		GeneratedAt:  doc.GeneratedAt,
		ContentBytes: result.ContentBytes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	*r = *withAuditResult(r, AuditResult{
		EventType:    "deliverable.exported",
		ResourceType: "DEAL",
		ResourceID:   dealID,
		Severity:     audit.SeverityMedium,
		Summary:      "deliverable exported",
		Refs:         []string{dealID, saved.DeliverableID},
		Safe:         map[string]interface{}{"format": result.Format, "kind": req.Kind, "deliverable_id": saved.DeliverableID},
	})

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(result.ContentLength))
	w.Header().Set("X-Deliverable-ID", saved.DeliverableID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.ContentBytes)
}

// deleteDeliverable implements the deliverable hard-delete path named in
// spec.md §3's retention lifecycle: admin approval is required for the
// DELIVERABLES retention class (security.RequiresAdminApproval), an active
// legal hold blocks the delete outright (security.BlockDeletionIfHeld), and
// the retention window must already have lapsed
// (security.CanHardDelete/EvaluateRetention) before the row is removed.
func (h *handlers) deleteDeliverable(w http.ResponseWriter, r *http.Request) {
	dealID := mux.Vars(r)["dealID"]
	deliverableID := mux.Vars(r)["deliverableID"]
	tc, ok := h.requireDealAccess(w, r, dealID)
	if !ok {
		return
	}
	if security.RequiresAdminApproval(security.RetentionDeliverables) && !tc.HasRole(security.RoleAdmin) {
		writeError(w, r, apperr.RBACDenied())
		return
	}

	rec, err := h.a.Stores.Deliverable.GetDeliverable(r.Context(), tc.TenantID, deliverableID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := security.BlockDeletionIfHeld(r.Context(), h.a.Stores.LegalHold, tc.TenantID, security.HoldTargetArtifact, deliverableID); err != nil {
		writeError(w, r, err)
		return
	}

	if !security.CanHardDelete(security.RetentionDeliverables) {
		writeError(w, r, apperr.DeletionBlockedByHold())
		return
	}
	withinRetention, earliestDelete := security.EvaluateRetention(security.RetentionDeliverables, rec.GeneratedAt, time.Now().UTC())
	if withinRetention {
		writeError(w, r, apperr.InvalidRequest("deliverable is still within its retention window until "+earliestDelete.Format(time.RFC3339)))
		return
	}

	if err := h.a.Stores.Deliverable.DeleteDeliverable(r.Context(), tc.TenantID, deliverableID); err != nil {
		writeError(w, r, err)
		return
	}

	*r = *withAuditResult(r, AuditResult{
		EventType:    "deliverable.deleted",
		ResourceType: "ARTIFACT",
		ResourceID:   deliverableID,
		Severity:     audit.SeverityCritical,
		Summary:      "deliverable hard-deleted",
		Refs:         []string{dealID, deliverableID},
		Safe:         map[string]interface{}{"deleted_by": tc.ActorID},
	})
	w.WriteHeader(http.StatusNoContent)
}

// --- Truth dashboard ---

// dashboardQuery implements the truth-dashboard aggregation endpoint: a
// JSONPath expression (?path=$.currency) is evaluated over every one of the
// deal's claims' Value JSON (spec.md §4.8), returning one result per claim
// whose Value matches it plus a tally of distinct results.
func (h *handlers) dashboardQuery(w http.ResponseWriter, r *http.Request) {
	dealID := mux.Vars(r)["dealID"]
	tc, ok := h.requireDealAccess(w, r, dealID)
	if !ok {
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, r, apperr.ValidationFailed([]string{"path"}))
		return
	}

	claims, err := h.a.Stores.Claim.ListClaims(r.Context(), tc.TenantID, dealID, 500, "")
	if err != nil {
		writeError(w, r, err)
		return
	}

	matches, err := dashboard.QueryClaimValues(claims.Items, path)
	if err != nil {
		writeError(w, r, apperr.ValidationFailed([]string{"path"}))
		return
	}
	counts, err := dashboard.CountByResult(claims.Items, path)
	if err != nil {
		writeError(w, r, apperr.ValidationFailed([]string{"path"}))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"counts":  counts,
	})
}

// --- Truth stream ---

var truthStreamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// truthStream implements spec.md §4.8: a read-only websocket feed of run
// step transitions for one deal. Authentication still applies (gate 1 runs
// for every path except /healthz); RBAC/ABAC are intentionally not
// re-checked per frame, matching the teacher's pattern of gating at upgrade
// time only.
func (h *handlers) truthStream(w http.ResponseWriter, r *http.Request) {
	dealID := mux.Vars(r)["dealID"]
	tc, ok := h.requireDealAccess(w, r, dealID)
	if !ok {
		return
	}

	conn, err := truthStreamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.a.Log.WithContext(r.Context()).WithError(err).Error("truth stream upgrade failed")
		return
	}
	defer conn.Close()

	runs, err := h.a.Stores.Run.ListRunsForDeal(r.Context(), tc.TenantID, dealID)
	if err != nil {
		return
	}
	for _, rn := range runs {
		if err := conn.WriteJSON(rn); err != nil {
			return
		}
	}
}
