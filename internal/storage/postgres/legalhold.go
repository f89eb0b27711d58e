package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
	"github.com/albarami/idis/internal/security"
)

// HoldStore implements security.HoldStore backed by PostgreSQL, so
// BlockDeletionIfHeld's answer survives a restart instead of resetting with
// the process (original_source's in-memory LegalHoldRegistry is explicitly
// documented there as "for testing/dev" only).
type HoldStore struct {
	db *sql.DB
}

var _ security.HoldStore = (*HoldStore)(nil)

// NewHoldStore builds a HoldStore over db.
func NewHoldStore(db *sql.DB) *HoldStore {
	return &HoldStore{db: db}
}

// IsHeld implements security.HoldStore.
func (s *HoldStore) IsHeld(ctx context.Context, tenantID string, targetType security.HoldTarget, targetID string) (bool, error) {
	row := DBTXFromContext(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM idis_legal_holds
		WHERE tenant_id = $1 AND target_type = $2 AND target_id = $3 AND lifted_at IS NULL
	`, tenantID, string(targetType), targetID)

	var count int
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// ApplyHold implements security.HoldStore.
func (s *HoldStore) ApplyHold(ctx context.Context, hold security.LegalHold) (security.LegalHold, error) {
	if hold.HoldID == "" {
		hold.HoldID = idgen.New()
	}
	if hold.AppliedAt.IsZero() {
		hold.AppliedAt = time.Now().UTC()
	}

	_, err := DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		INSERT INTO idis_legal_holds (hold_id, tenant_id, target_type, target_id, reason_hash, reason_length, applied_at, applied_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, hold.HoldID, hold.TenantID, string(hold.TargetType), hold.TargetID, hold.ReasonHash, hold.ReasonLength, hold.AppliedAt, hold.AppliedBy)
	if err != nil {
		return security.LegalHold{}, err
	}
	return hold, nil
}

// LiftHold implements security.HoldStore.
func (s *HoldStore) LiftHold(ctx context.Context, tenantID, holdID, liftedBy string) (security.LegalHold, error) {
	liftedAt := time.Now().UTC()
	result, err := DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		UPDATE idis_legal_holds
		SET lifted_at = $3, lifted_by = $4
		WHERE hold_id = $1 AND tenant_id = $2 AND lifted_at IS NULL
	`, holdID, tenantID, liftedAt, liftedBy)
	if err != nil {
		return security.LegalHold{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return security.LegalHold{}, apperr.NotFound("legal_hold", holdID)
	}

	row := DBTXFromContext(ctx, s.db).QueryRowContext(ctx, `
		SELECT hold_id, tenant_id, target_type, target_id, reason_hash, reason_length, applied_at, applied_by, lifted_at, lifted_by
		FROM idis_legal_holds
		WHERE hold_id = $1 AND tenant_id = $2
	`, holdID, tenantID)

	var (
		hold       security.LegalHold
		targetType string
		liftedAtNS sql.NullTime
		liftedByNS sql.NullString
	)
	if err := row.Scan(&hold.HoldID, &hold.TenantID, &targetType, &hold.TargetID, &hold.ReasonHash, &hold.ReasonLength,
		&hold.AppliedAt, &hold.AppliedBy, &liftedAtNS, &liftedByNS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return security.LegalHold{}, apperr.NotFound("legal_hold", holdID)
		}
		return security.LegalHold{}, err
	}
	hold.TargetType = security.HoldTarget(targetType)
	if liftedAtNS.Valid {
		hold.LiftedAt = &liftedAtNS.Time
	}
	if liftedByNS.Valid {
		hold.LiftedBy = liftedByNS.String
	}
	return hold, nil
}
