package memory

import (
	"context"

	"github.com/albarami/idis/internal/domain/run"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
)

// CreateRun implements storage.RunStore.
func (m *Memory) CreateRun(_ context.Context, r run.Run) (run.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.RunID == "" {
		r.RunID = idgen.New()
	}
	m.runs[r.RunID] = r
	return r, nil
}

// GetRun implements storage.RunStore and internal/orchestrator.Store.
func (m *Memory) GetRun(_ context.Context, tenantID, runID string) (run.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.runs[runID]
	if !ok || r.TenantID != tenantID {
		return run.Run{}, apperr.NotFound("run", runID)
	}
	return r, nil
}

// ListRunsForDeal implements storage.RunStore.
func (m *Memory) ListRunsForDeal(_ context.Context, tenantID, dealID string) ([]run.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []run.Run
	for _, id := range sortedKeys(m.runs) {
		r := m.runs[id]
		if r.TenantID == tenantID && r.DealID == dealID {
			out = append(out, r)
		}
	}
	return out, nil
}

// SaveStep implements storage.RunStore and internal/orchestrator.Store: it
// upserts a single RunStep into its parent Run's ledger by StepName, the
// orchestrator's ledger-consult-then-persist unit of work (spec.md §4.1).
func (m *Memory) SaveStep(_ context.Context, step run.RunStep) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[step.RunID]
	if !ok || r.TenantID != step.TenantID {
		return apperr.NotFound("run", step.RunID)
	}
	for i, existing := range r.Steps {
		if existing.StepName == step.StepName {
			if step.RunStepID == "" {
				step.RunStepID = existing.RunStepID
			}
			r.Steps[i] = step
			m.runs[step.RunID] = r
			return nil
		}
	}
	if step.RunStepID == "" {
		step.RunStepID = idgen.New()
	}
	r.Steps = append(r.Steps, step)
	m.runs[step.RunID] = r
	return nil
}

// SaveRunStatus implements storage.RunStore and internal/orchestrator.Store.
func (m *Memory) SaveRunStatus(_ context.Context, tenantID, runID string, status run.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[runID]
	if !ok || r.TenantID != tenantID {
		return apperr.NotFound("run", runID)
	}
	r.Status = status
	m.runs[runID] = r
	return nil
}
