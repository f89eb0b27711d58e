package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albarami/idis/internal/domain/run"
	"github.com/albarami/idis/internal/platform/apperr"
)

var runCols = []string{"run_id", "tenant_id", "deal_id", "mode", "status", "created_at", "updated_at"}
var runStepCols = []string{"run_step_id", "tenant_id", "run_id", "step_name", "step_order", "status", "started_at", "finished_at", "retry_count", "result_summary", "error_code", "error_message"}

func TestCreateRun_InsertsRunAndOneStepPerSnapshotPipelineStep(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO idis_runs").WillReturnResult(sqlmock.NewResult(1, 1))
	for range run.SnapshotSteps {
		mock.ExpectExec("INSERT INTO idis_run_steps").WillReturnResult(sqlmock.NewResult(1, 1))
	}

	created, err := store.CreateRun(context.Background(), run.Run{TenantID: "tenant-1", DealID: "deal-1", Mode: run.ModeSnapshot})

	require.NoError(t, err)
	assert.NotEmpty(t, created.RunID)
	assert.Len(t, created.Steps, len(run.SnapshotSteps))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRun_ReturnsNotFoundOnNoRows(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT .* FROM idis_runs").
		WithArgs("run-1", "tenant-1").
		WillReturnRows(sqlmock.NewRows(runCols))

	_, err := store.GetRun(context.Background(), "tenant-1", "run-1")

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeNotFound, appErr.Code)
}

func TestGetRun_LoadsRunAndItsStepLedger(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	runRows := sqlmock.NewRows(runCols).AddRow("run-1", "tenant-1", "deal-1", run.ModeSnapshot, run.StatusQueued, now, now)
	mock.ExpectQuery("SELECT .* FROM idis_runs").WithArgs("run-1", "tenant-1").WillReturnRows(runRows)
	stepRows := sqlmock.NewRows(runStepCols).
		AddRow("step-1", "tenant-1", "run-1", run.StepIngestCheck, 0, run.StepStatusPending, nil, nil, 0, []byte(`null`), "", "")
	mock.ExpectQuery("SELECT .* FROM idis_run_steps").WithArgs("tenant-1", "run-1").WillReturnRows(stepRows)

	got, err := store.GetRun(context.Background(), "tenant-1", "run-1")

	require.NoError(t, err)
	require.Len(t, got.Steps, 1)
	assert.Equal(t, run.StepIngestCheck, got.Steps[0].StepName)
}

func TestListRunsForDeal_ReturnsAllRows(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(runCols).
		AddRow("run-1", "tenant-1", "deal-1", run.ModeSnapshot, run.StatusQueued, now, now).
		AddRow("run-2", "tenant-1", "deal-1", run.ModeFull, run.StatusQueued, now, now)
	mock.ExpectQuery("SELECT .* FROM idis_runs").WithArgs("tenant-1", "deal-1").WillReturnRows(rows)

	got, err := store.ListRunsForDeal(context.Background(), "tenant-1", "deal-1")

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSaveStep_InsertsWhenNoExistingRowUpdated(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("UPDATE idis_run_steps").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO idis_run_steps").WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.SaveStep(context.Background(), run.RunStep{RunStepID: "step-1", TenantID: "tenant-1", RunID: "run-1", StepName: run.StepIngestCheck})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveStep_UpdatesExistingRow(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("UPDATE idis_run_steps").WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.SaveStep(context.Background(), run.RunStep{RunStepID: "step-1", TenantID: "tenant-1", RunID: "run-1", StepName: run.StepIngestCheck})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRunStatus_ReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("UPDATE idis_runs").WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.SaveRunStatus(context.Background(), "tenant-1", "run-1", run.StatusRunning)

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeNotFound, appErr.Code)
}
