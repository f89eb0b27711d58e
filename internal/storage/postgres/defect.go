package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/albarami/idis/internal/domain/defect"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
)

const defectColumns = `
	defect_id, tenant_id, sanad_id, claim_id, defect_type, severity,
	cure_protocol, status, description,
	waived_by, waived_reason, waived_at,
	cured_by, cured_reason, cured_at,
	created_at
`

// CreateDefect implements storage.DefectStore.
func (s *Store) CreateDefect(ctx context.Context, d defect.Defect) (defect.Defect, error) {
	if d.DefectID == "" {
		d.DefectID = idgen.New()
	}
	_, err := DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		INSERT INTO idis_defects (`+defectColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, d.DefectID, d.TenantID, d.SanadID, d.ClaimID, d.DefectType, d.Severity,
		d.CureProtocol, d.Status, d.Description,
		d.WaivedBy, d.WaivedReason, d.WaivedAt,
		d.CuredBy, d.CuredReason, d.CuredAt,
		d.CreatedAt)
	if err != nil {
		return defect.Defect{}, err
	}
	return d, nil
}

// UpdateDefect implements storage.DefectStore. Used by Waive/Cure
// transitions, which only ever move Status forward and populate the
// corresponding actor/reason/timestamp triple.
func (s *Store) UpdateDefect(ctx context.Context, d defect.Defect) (defect.Defect, error) {
	result, err := DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		UPDATE idis_defects
		SET status = $3, waived_by = $4, waived_reason = $5, waived_at = $6,
		    cured_by = $7, cured_reason = $8, cured_at = $9
		WHERE defect_id = $1 AND tenant_id = $2
	`, d.DefectID, d.TenantID, d.Status, d.WaivedBy, d.WaivedReason, d.WaivedAt,
		d.CuredBy, d.CuredReason, d.CuredAt)
	if err != nil {
		return defect.Defect{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return defect.Defect{}, apperr.NotFound("defect", d.DefectID)
	}
	return d, nil
}

func scanDefect(row interface{ Scan(...interface{}) error }) (defect.Defect, error) {
	var d defect.Defect
	err := row.Scan(
		&d.DefectID, &d.TenantID, &d.SanadID, &d.ClaimID, &d.DefectType, &d.Severity,
		&d.CureProtocol, &d.Status, &d.Description,
		&d.WaivedBy, &d.WaivedReason, &d.WaivedAt,
		&d.CuredBy, &d.CuredReason, &d.CuredAt,
		&d.CreatedAt,
	)
	return d, err
}

// GetDefect implements storage.DefectStore.
func (s *Store) GetDefect(ctx context.Context, tenantID, defectID string) (defect.Defect, error) {
	row := DBTXFromContext(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+defectColumns+`
		FROM idis_defects
		WHERE defect_id = $1 AND tenant_id = $2
	`, defectID, tenantID)

	d, err := scanDefect(row)
	if errors.Is(err, sql.ErrNoRows) {
		return defect.Defect{}, apperr.NotFound("defect", defectID)
	}
	return d, err
}

// ListDefectsForSanad implements storage.DefectStore.
func (s *Store) ListDefectsForSanad(ctx context.Context, tenantID, sanadID string) ([]defect.Defect, error) {
	rows, err := DBTXFromContext(ctx, s.db).QueryContext(ctx, `
		SELECT `+defectColumns+`
		FROM idis_defects
		WHERE tenant_id = $1 AND sanad_id = $2
		ORDER BY created_at, defect_id
	`, tenantID, sanadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []defect.Defect
	for rows.Next() {
		d, err := scanDefect(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
