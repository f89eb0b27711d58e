package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/albarami/idis/internal/domain/evidence"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
)

const evidenceColumns = `
	evidence_id, tenant_id, claim_id, source_span_id, source_grade,
	source_system, upstream_origin_id, verification_status, created_at
`

// CreateEvidence implements storage.EvidenceStore.
func (s *Store) CreateEvidence(ctx context.Context, e evidence.Evidence) (evidence.Evidence, error) {
	if e.EvidenceID == "" {
		e.EvidenceID = idgen.New()
	}
	_, err := DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		INSERT INTO idis_evidence (`+evidenceColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, e.EvidenceID, e.TenantID, e.ClaimID, e.SourceSpanID, e.SourceGrade,
		e.SourceSystem, e.UpstreamOriginID, e.VerificationStatus, e.CreatedAt)
	if err != nil {
		return evidence.Evidence{}, err
	}
	return e, nil
}

func scanEvidence(row interface{ Scan(...interface{}) error }) (evidence.Evidence, error) {
	var e evidence.Evidence
	err := row.Scan(&e.EvidenceID, &e.TenantID, &e.ClaimID, &e.SourceSpanID, &e.SourceGrade,
		&e.SourceSystem, &e.UpstreamOriginID, &e.VerificationStatus, &e.CreatedAt)
	return e, err
}

// GetEvidence implements storage.EvidenceStore.
func (s *Store) GetEvidence(ctx context.Context, tenantID, evidenceID string) (evidence.Evidence, error) {
	row := DBTXFromContext(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+evidenceColumns+`
		FROM idis_evidence
		WHERE evidence_id = $1 AND tenant_id = $2
	`, evidenceID, tenantID)

	e, err := scanEvidence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return evidence.Evidence{}, apperr.NotFound("evidence", evidenceID)
	}
	return e, err
}

// ListEvidenceForClaim implements storage.EvidenceStore.
func (s *Store) ListEvidenceForClaim(ctx context.Context, tenantID, claimID string) ([]evidence.Evidence, error) {
	rows, err := DBTXFromContext(ctx, s.db).QueryContext(ctx, `
		SELECT `+evidenceColumns+`
		FROM idis_evidence
		WHERE tenant_id = $1 AND claim_id = $2
		ORDER BY created_at, evidence_id
	`, tenantID, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []evidence.Evidence
	for rows.Next() {
		e, err := scanEvidence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
