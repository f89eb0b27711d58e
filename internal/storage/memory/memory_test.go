package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albarami/idis/internal/domain/deal"
	"github.com/albarami/idis/internal/domain/run"
	"github.com/albarami/idis/internal/platform/apperr"
)

func TestMemory_DealLifecycle(t *testing.T) {
	m := New()
	d := deal.New("tenant-1", "Acme Co", "SOURCING")

	created, err := m.CreateDeal(context.Background(), d)
	require.NoError(t, err)
	require.NotEmpty(t, created.DealID)

	got, err := m.GetDeal(context.Background(), "tenant-1", created.DealID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Co", got.CompanyName)
}

func TestMemory_GetDeal_TenantIsolation(t *testing.T) {
	m := New()
	created, err := m.CreateDeal(context.Background(), deal.New("tenant-1", "Acme Co", "SOURCING"))
	require.NoError(t, err)

	_, err = m.GetDeal(context.Background(), "tenant-2", created.DealID)
	require.Error(t, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
}

func TestMemory_ListDeals_ScopedToTenant(t *testing.T) {
	m := New()
	_, err := m.CreateDeal(context.Background(), deal.New("tenant-1", "Acme Co", "SOURCING"))
	require.NoError(t, err)
	_, err = m.CreateDeal(context.Background(), deal.New("tenant-2", "Other Co", "SOURCING"))
	require.NoError(t, err)

	page, err := m.ListDeals(context.Background(), "tenant-1", 0, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Acme Co", page.Items[0].CompanyName)
}

func TestMemory_RunLifecycle_SaveStepThenStatus(t *testing.T) {
	m := New()
	created, err := m.CreateDeal(context.Background(), deal.New("tenant-1", "Acme Co", "SOURCING"))
	require.NoError(t, err)

	var steps []run.RunStep
	for i, name := range run.StepsFor(run.ModeSnapshot) {
		steps = append(steps, run.RunStep{TenantID: "tenant-1", StepName: name, StepOrder: i, Status: run.StepStatusPending})
	}
	r := run.Run{
		TenantID: "tenant-1",
		DealID:   created.DealID,
		Mode:     run.ModeSnapshot,
		Status:   run.StatusRunning,
		Steps:    steps,
	}
	createdRun, err := m.CreateRun(context.Background(), r)
	require.NoError(t, err)
	require.NotEmpty(t, createdRun.RunID)

	step := createdRun.Steps[0]
	step.RunID = createdRun.RunID
	step.Status = run.StepStatusCompleted
	require.NoError(t, m.SaveStep(context.Background(), step))

	require.NoError(t, m.SaveRunStatus(context.Background(), "tenant-1", createdRun.RunID, run.StatusSucceeded))

	got, err := m.GetRun(context.Background(), "tenant-1", createdRun.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.StatusSucceeded, got.Status)
	assert.Equal(t, run.StepStatusCompleted, got.Steps[0].Status)
}

func TestMemory_SaveStep_UnknownRunIsNotFound(t *testing.T) {
	m := New()

	err := m.SaveStep(context.Background(), run.RunStep{RunID: "missing", TenantID: "tenant-1"})

	require.Error(t, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
}

func TestMemory_ListRunsForDeal_ScopedToTenantAndDeal(t *testing.T) {
	m := New()
	dealA, err := m.CreateDeal(context.Background(), deal.New("tenant-1", "A", "SOURCING"))
	require.NoError(t, err)
	dealB, err := m.CreateDeal(context.Background(), deal.New("tenant-1", "B", "SOURCING"))
	require.NoError(t, err)

	_, err = m.CreateRun(context.Background(), run.Run{TenantID: "tenant-1", DealID: dealA.DealID, Mode: run.ModeSnapshot})
	require.NoError(t, err)
	_, err = m.CreateRun(context.Background(), run.Run{TenantID: "tenant-1", DealID: dealB.DealID, Mode: run.ModeSnapshot})
	require.NoError(t, err)

	runs, err := m.ListRunsForDeal(context.Background(), "tenant-1", dealA.DealID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, dealA.DealID, runs[0].DealID)
}
