// Package saga implements the Postgres/Graph dual-write saga (spec.md §4.6):
// an ordered list of steps, each with its own compensation, run fail-closed
// so a failure partway through never leaves Postgres and the Graph
// projection silently inconsistent.
package saga

import (
	"context"
	"fmt"

	"github.com/albarami/idis/internal/platform/apperr"
)

// StepStatus is the outcome of one step's forward execution or compensation.
type StepStatus string

const (
	StepCompleted          StepStatus = "COMPLETED"
	StepFailed             StepStatus = "FAILED"
	StepCompensated        StepStatus = "COMPENSATED"
	StepCompensationFailed StepStatus = "COMPENSATION_FAILED"
)

// Status is the overall outcome of a saga run.
type Status string

const (
	StatusCompleted          Status = "COMPLETED"
	StatusCompensated        Status = "COMPENSATED"
	StatusCompensationFailed Status = "COMPENSATION_FAILED"
)

// StepResult records one step's (or one compensation's) outcome.
type StepResult struct {
	StepName string
	Status   StepStatus
	Err      error
}

// Step is one write operation with its undo. Execute returns an opaque
// result handed back to Compensate if a later step fails. Implementations
// must make Execute and Compensate idempotent against the concrete store
// they wrap (Postgres or Graph), since a crash mid-saga may replay either.
type Step struct {
	Name       string
	Execute    func(ctx context.Context) (interface{}, error)
	Compensate func(ctx context.Context, result interface{}) error
}

// Result is the outcome of running a whole saga.
type Result struct {
	SagaID string
	Status Status
	Steps  []StepResult
	Err    error
}

// Executor runs an ordered list of Steps, compensating every completed step
// in reverse order on the first failure (spec.md §4.6 "Saga executor").
type Executor struct {
	sagaID string
	steps  []Step
}

// New builds an Executor for sagaID (used only for result/error labeling).
func New(sagaID string) *Executor {
	return &Executor{sagaID: sagaID}
}

// AddStep appends step and returns the Executor for chaining, matching the
// builder-style construction the original Python saga module uses.
func (e *Executor) AddStep(step Step) *Executor {
	e.steps = append(e.steps, step)
	return e
}

type completedStep struct {
	step   Step
	result interface{}
}

// Run executes every step in order. On the first failure it compensates
// every already-completed step in reverse order; a compensation failure is
// recorded but does not stop the remaining compensations from running
// (best-effort rollback, spec.md §4.6). If every compensation succeeds
// (Status COMPENSATED), the stores are consistent again and Run returns the
// original triggering error. Only a failed compensation (Status
// COMPENSATION_FAILED), which leaves the stores genuinely inconsistent,
// surfaces as a *apperr.Error with code DUAL_WRITE_CONSISTENCY_ERROR.
func (e *Executor) Run(ctx context.Context) (Result, error) {
	result := Result{SagaID: e.sagaID, Status: StatusCompleted}
	var completed []completedStep

	for _, step := range e.steps {
		stepResult, err := step.Execute(ctx)
		if err != nil {
			result.Steps = append(result.Steps, StepResult{StepName: step.Name, Status: StepFailed, Err: err})
			result.Err = fmt.Errorf("saga %s: step %s: %w", e.sagaID, step.Name, err)
			result.Status = e.compensate(ctx, &result, completed)
			if result.Status == StatusCompensationFailed {
				return result, apperr.DualWriteConsistencyError(step.Name, e.sagaID, result.Err)
			}
			return result, result.Err
		}
		result.Steps = append(result.Steps, StepResult{StepName: step.Name, Status: StepCompleted})
		completed = append(completed, completedStep{step: step, result: stepResult})
	}

	return result, nil
}

// compensate undoes every entry in completed, in reverse order, appending
// one StepResult per compensation attempt to result.Steps.
func (e *Executor) compensate(ctx context.Context, result *Result, completed []completedStep) Status {
	allCompensated := true
	for i := len(completed) - 1; i >= 0; i-- {
		cs := completed[i]
		if err := cs.step.Compensate(ctx, cs.result); err != nil {
			allCompensated = false
			result.Steps = append(result.Steps, StepResult{StepName: cs.step.Name + "_compensation", Status: StepCompensationFailed, Err: err})
			continue
		}
		result.Steps = append(result.Steps, StepResult{StepName: cs.step.Name + "_compensation", Status: StepCompensated})
	}
	if allCompensated {
		return StatusCompensated
	}
	return StatusCompensationFailed
}
