// Package orchestrator implements the Run Orchestrator (spec.md §4.1): a
// deterministic pipeline over a deal's documents, composed of steps injected
// at construction so each can be stubbed and isolated in tests.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/albarami/idis/internal/audit"
	domainaudit "github.com/albarami/idis/internal/domain/audit"
	"github.com/albarami/idis/internal/domain/run"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
	"github.com/albarami/idis/internal/platform/logging"
)

// StepOutcome is the outcome a StepFn reports for its own execution, distinct
// from run.StepStatus: COMPLETED maps 1:1, but PARTIAL lets a step succeed
// while marking the enclosing Run degraded (spec.md §4.1 step 4).
type StepOutcome struct {
	Partial       bool
	ResultSummary map[string]interface{}
}

// StepFn executes one named pipeline step against runCtx. Implementations
// must be idempotent: the resume protocol re-invokes a step only when its
// last recorded status was not COMPLETED, but a step that itself performs a
// side effect (e.g. creating a claim) must tolerate being called again after
// a crash between "side effect happened" and "ledger updated."
type StepFn func(ctx context.Context, runCtx RunContext) (StepOutcome, error)

// RunContext is the immutable input to one Run's execution.
type RunContext struct {
	RunID     string
	TenantID  string
	DealID    string
	Mode      run.Mode
	Documents []string
}

// Store is the persistence contract the orchestrator needs: read the current
// ledger, then persist per-step and per-run transitions. internal/storage
// provides the Postgres-backed implementation.
type Store interface {
	GetRun(ctx context.Context, tenantID, runID string) (run.Run, error)
	SaveStep(ctx context.Context, step run.RunStep) error
	SaveRunStatus(ctx context.Context, tenantID, runID string, status run.Status) error
}

// Orchestrator executes a Run's step pipeline against an injected Store,
// audit pipeline, and per-step function table.
type Orchestrator struct {
	store   Store
	auditor *audit.Pipeline
	steps   map[run.StepName]StepFn
	log     *logging.Logger
}

// New builds an Orchestrator. steps must provide an entry for every
// StepName that StepsFor(mode) can produce for the modes this deployment
// runs; a missing entry fails the step with error code UNREGISTERED_STEP
// rather than panicking.
func New(store Store, auditor *audit.Pipeline, steps map[run.StepName]StepFn, log *logging.Logger) *Orchestrator {
	return &Orchestrator{store: store, auditor: auditor, steps: steps, log: log}
}

// Execute runs runCtx.RunID's pipeline from the first non-COMPLETED step
// (spec.md §4.1 "Resume protocol"). It returns the terminal run.Status.
func (o *Orchestrator) Execute(ctx context.Context, runCtx RunContext) (run.Status, error) {
	r, err := o.store.GetRun(ctx, runCtx.TenantID, runCtx.RunID)
	if err != nil {
		return "", fmt.Errorf("load run ledger: %w", err)
	}

	stepOrder := run.StepsFor(runCtx.Mode)
	byName := make(map[run.StepName]run.RunStep, len(r.Steps))
	for _, s := range r.SortedSteps() {
		byName[s.StepName] = s
	}

	anyPartial := false

	for order, name := range stepOrder {
		existing, known := byName[name]
		if known && existing.Status == run.StepStatusCompleted {
			continue
		}

		step := run.RunStep{
			RunStepID:  firstNonEmpty(existing.RunStepID, idgen.New()),
			TenantID:   runCtx.TenantID,
			RunID:      runCtx.RunID,
			StepName:   name,
			StepOrder:  order,
			Status:     run.StepStatusRunning,
			StartedAt:  timePtr(time.Now().UTC()),
			RetryCount: existing.RetryCount,
		}
		if known && existing.Status == run.StepStatusFailed {
			step.RetryCount = existing.RetryCount + 1
		}

		if err := o.emitStepAudit(ctx, runCtx, "run.step.started", domainaudit.SeverityLow, name); err != nil {
			return run.StatusFailed, err
		}
		if err := o.store.SaveStep(ctx, step); err != nil {
			return run.StatusFailed, fmt.Errorf("persist step %s running: %w", name, err)
		}

		fn, ok := o.steps[name]
		if !ok {
			step.Status = run.StepStatusFailed
			step.FinishedAt = timePtr(time.Now().UTC())
			step.ErrorCode = "UNREGISTERED_STEP"
			step.ErrorMessage = fmt.Sprintf("no step function registered for %s", name)
			_ = o.store.SaveStep(ctx, step)
			_ = o.emitStepAudit(ctx, runCtx, "run.step.failed", domainaudit.SeverityHigh, name)
			if err := o.store.SaveRunStatus(ctx, runCtx.TenantID, runCtx.RunID, run.StatusFailed); err != nil {
				return run.StatusFailed, err
			}
			return run.StatusFailed, fmt.Errorf("step %s: %s", name, step.ErrorMessage)
		}

		outcome, err := fn(ctx, runCtx)
		step.FinishedAt = timePtr(time.Now().UTC())
		if err != nil {
			step.Status = run.StepStatusFailed
			step.ErrorCode = errorCategory(err)
			step.ErrorMessage = err.Error()
			if saveErr := o.store.SaveStep(ctx, step); saveErr != nil {
				return run.StatusFailed, fmt.Errorf("persist step %s failure: %w", name, saveErr)
			}
			if auditErr := o.emitStepAudit(ctx, runCtx, "run.step.failed", domainaudit.SeverityHigh, name); auditErr != nil {
				return run.StatusFailed, auditErr
			}
			if saveErr := o.store.SaveRunStatus(ctx, runCtx.TenantID, runCtx.RunID, run.StatusFailed); saveErr != nil {
				return run.StatusFailed, saveErr
			}
			return run.StatusFailed, err
		}

		step.Status = run.StepStatusCompleted
		step.ResultSummary = outcome.ResultSummary
		if err := o.store.SaveStep(ctx, step); err != nil {
			return run.StatusFailed, fmt.Errorf("persist step %s completion: %w", name, err)
		}
		if err := o.emitStepAudit(ctx, runCtx, "run.step.completed", domainaudit.SeverityLow, name); err != nil {
			return run.StatusFailed, err
		}

		if outcome.Partial {
			anyPartial = true
		}
	}

	finalStatus := run.StatusSucceeded
	if anyPartial {
		finalStatus = run.StatusPartial
	}
	if err := o.store.SaveRunStatus(ctx, runCtx.TenantID, runCtx.RunID, finalStatus); err != nil {
		return run.StatusFailed, err
	}
	return finalStatus, nil
}

func (o *Orchestrator) emitStepAudit(ctx context.Context, runCtx RunContext, eventType string, severity domainaudit.Severity, step run.StepName) error {
	ev, err := audit.Build(audit.BuildParams{
		TenantID:     runCtx.TenantID,
		Actor:        domainaudit.Actor{ActorType: domainaudit.ActorService, ActorID: "orchestrator"},
		RequestID:    runCtx.RunID,
		Method:       "INTERNAL",
		Path:         string(step),
		StatusCode:   200,
		ResourceType: "RUN",
		ResourceID:   runCtx.RunID,
		EventType:    eventType,
		Severity:     severity,
		Summary:      fmt.Sprintf("%s: %s", eventType, step),
		Safe:         map[string]interface{}{"step_name": step},
	})
	if err != nil {
		return err
	}
	if err := o.auditor.Emit(ctx, ev); err != nil {
		o.log.WithContext(ctx).WithError(err).Error("run step audit emit failed")
		return err
	}
	return nil
}

// errorCategory maps err to a stable, non-stack-trace error_code (spec.md
// §4.1 step 4: "never a stack trace"). Typed errors elsewhere in the system
// already carry a stable apperr.Code; anything else collapses to a generic
// category so a bare Go error never leaks its message structure as a code.
func errorCategory(err error) string {
	if appErr, ok := apperr.As(err); ok {
		return string(appErr.Code)
	}
	return "STEP_EXECUTION_ERROR"
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func timePtr(t time.Time) *time.Time { return &t }
