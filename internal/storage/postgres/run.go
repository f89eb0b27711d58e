package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/albarami/idis/internal/domain/run"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
)

// CreateRun implements storage.RunStore. It inserts the Run row and one
// PENDING RunStep row per run.StepsFor(r.Mode), so the ledger a fresh Run
// presents to the orchestrator already has every step slot to resume into.
func (s *Store) CreateRun(ctx context.Context, r run.Run) (run.Run, error) {
	if r.RunID == "" {
		r.RunID = idgen.New()
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.Status == "" {
		r.Status = run.StatusQueued
	}

	db := DBTXFromContext(ctx, s.db)
	_, err := db.ExecContext(ctx, `
		INSERT INTO idis_runs (run_id, tenant_id, deal_id, mode, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, r.RunID, r.TenantID, r.DealID, r.Mode, r.Status, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return run.Run{}, err
	}

	if len(r.Steps) == 0 {
		for order, name := range run.StepsFor(r.Mode) {
			r.Steps = append(r.Steps, run.RunStep{
				RunStepID: idgen.New(),
				TenantID:  r.TenantID,
				RunID:     r.RunID,
				StepName:  name,
				StepOrder: order,
				Status:    run.StepStatusPending,
			})
		}
	}
	for _, step := range r.Steps {
		if err := s.insertStep(ctx, db, step); err != nil {
			return run.Run{}, err
		}
	}
	return r, nil
}

func (s *Store) insertStep(ctx context.Context, db DBTX, step run.RunStep) error {
	resultSummaryJSON, err := json.Marshal(step.ResultSummary)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO idis_run_steps (
			run_step_id, tenant_id, run_id, step_name, step_order, status,
			started_at, finished_at, retry_count, result_summary, error_code, error_message
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, step.RunStepID, step.TenantID, step.RunID, step.StepName, step.StepOrder, step.Status,
		step.StartedAt, step.FinishedAt, step.RetryCount, resultSummaryJSON, step.ErrorCode, step.ErrorMessage)
	return err
}

// GetRun implements storage.RunStore and internal/orchestrator.Store: loads
// the Run row plus its full step ledger.
func (s *Store) GetRun(ctx context.Context, tenantID, runID string) (run.Run, error) {
	db := DBTXFromContext(ctx, s.db)

	row := db.QueryRowContext(ctx, `
		SELECT run_id, tenant_id, deal_id, mode, status, created_at, updated_at
		FROM idis_runs
		WHERE run_id = $1 AND tenant_id = $2
	`, runID, tenantID)

	var r run.Run
	if err := row.Scan(&r.RunID, &r.TenantID, &r.DealID, &r.Mode, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run.Run{}, apperr.NotFound("run", runID)
		}
		return run.Run{}, err
	}

	steps, err := s.listSteps(ctx, db, tenantID, runID)
	if err != nil {
		return run.Run{}, err
	}
	r.Steps = steps
	return r, nil
}

func (s *Store) listSteps(ctx context.Context, db DBTX, tenantID, runID string) ([]run.RunStep, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT run_step_id, tenant_id, run_id, step_name, step_order, status,
		       started_at, finished_at, retry_count, result_summary, error_code, error_message
		FROM idis_run_steps
		WHERE tenant_id = $1 AND run_id = $2
		ORDER BY step_order
	`, tenantID, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []run.RunStep
	for rows.Next() {
		var (
			step              run.RunStep
			resultSummaryJSON []byte
		)
		if err := rows.Scan(
			&step.RunStepID, &step.TenantID, &step.RunID, &step.StepName, &step.StepOrder, &step.Status,
			&step.StartedAt, &step.FinishedAt, &step.RetryCount, &resultSummaryJSON, &step.ErrorCode, &step.ErrorMessage,
		); err != nil {
			return nil, err
		}
		if len(resultSummaryJSON) > 0 && string(resultSummaryJSON) != "null" {
			if err := json.Unmarshal(resultSummaryJSON, &step.ResultSummary); err != nil {
				return nil, err
			}
		}
		out = append(out, step)
	}
	return out, rows.Err()
}

// ListRunsForDeal implements storage.RunStore. Step ledgers are not loaded
// per list entry; callers needing full step detail call GetRun.
func (s *Store) ListRunsForDeal(ctx context.Context, tenantID, dealID string) ([]run.Run, error) {
	rows, err := DBTXFromContext(ctx, s.db).QueryContext(ctx, `
		SELECT run_id, tenant_id, deal_id, mode, status, created_at, updated_at
		FROM idis_runs
		WHERE tenant_id = $1 AND deal_id = $2
		ORDER BY created_at DESC
	`, tenantID, dealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []run.Run
	for rows.Next() {
		var r run.Run
		if err := rows.Scan(&r.RunID, &r.TenantID, &r.DealID, &r.Mode, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveStep implements storage.RunStore and internal/orchestrator.Store as an
// upsert keyed on run_step_id, matching the orchestrator's read-modify-write
// per-step unit of work.
func (s *Store) SaveStep(ctx context.Context, step run.RunStep) error {
	resultSummaryJSON, err := json.Marshal(step.ResultSummary)
	if err != nil {
		return err
	}
	result, err := DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		UPDATE idis_run_steps
		SET status = $3, started_at = $4, finished_at = $5, retry_count = $6,
		    result_summary = $7, error_code = $8, error_message = $9
		WHERE run_step_id = $1 AND tenant_id = $2
	`, step.RunStepID, step.TenantID, step.Status, step.StartedAt, step.FinishedAt,
		step.RetryCount, resultSummaryJSON, step.ErrorCode, step.ErrorMessage)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		return nil
	}
	return s.insertStep(ctx, DBTXFromContext(ctx, s.db), step)
}

// SaveRunStatus implements storage.RunStore and internal/orchestrator.Store.
func (s *Store) SaveRunStatus(ctx context.Context, tenantID, runID string, status run.Status) error {
	result, err := DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		UPDATE idis_runs
		SET status = $3, updated_at = $4
		WHERE run_id = $1 AND tenant_id = $2
	`, runID, tenantID, status, time.Now().UTC())
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperr.NotFound("run", runID)
	}
	return nil
}
