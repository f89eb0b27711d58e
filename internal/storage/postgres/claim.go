package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/albarami/idis/internal/domain/claim"
	"github.com/albarami/idis/internal/domain/valuestruct"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
	"github.com/albarami/idis/internal/storage"
)

// CreateClaim implements storage.ClaimStore.
func (s *Store) CreateClaim(ctx context.Context, c claim.Claim) (claim.Claim, error) {
	if c.ClaimID == "" {
		c.ClaimID = idgen.New()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	valueJSON, err := json.Marshal(c.Value)
	if err != nil {
		return claim.Claim{}, err
	}

	_, err = DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		INSERT INTO idis_claims (
			claim_id, tenant_id, deal_id, claim_class, text, value,
			claim_grade, claim_verdict, claim_action, materiality,
			primary_span_id, extraction_confidence, dhabt_score,
			is_factual, is_subjective, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`, c.ClaimID, c.TenantID, c.DealID, c.ClaimClass, c.Text, valueJSON,
		c.ClaimGrade, c.ClaimVerdict, c.ClaimAction, c.Materiality,
		c.PrimarySpanID, c.ExtractionConfidence, c.DhabtScore,
		c.IsFactual, c.IsSubjective, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return claim.Claim{}, err
	}
	return c, nil
}

// UpdateClaim implements storage.ClaimStore.
func (s *Store) UpdateClaim(ctx context.Context, c claim.Claim) (claim.Claim, error) {
	existing, err := s.GetClaim(ctx, c.TenantID, c.ClaimID)
	if err != nil {
		return claim.Claim{}, err
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()

	valueJSON, err := json.Marshal(c.Value)
	if err != nil {
		return claim.Claim{}, err
	}

	result, err := DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		UPDATE idis_claims
		SET text = $3, value = $4, claim_grade = $5, claim_verdict = $6,
		    claim_action = $7, materiality = $8, primary_span_id = $9,
		    extraction_confidence = $10, dhabt_score = $11, is_factual = $12,
		    is_subjective = $13, updated_at = $14
		WHERE claim_id = $1 AND tenant_id = $2
	`, c.ClaimID, c.TenantID, c.Text, valueJSON, c.ClaimGrade, c.ClaimVerdict,
		c.ClaimAction, c.Materiality, c.PrimarySpanID, c.ExtractionConfidence,
		c.DhabtScore, c.IsFactual, c.IsSubjective, c.UpdatedAt)
	if err != nil {
		return claim.Claim{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return claim.Claim{}, apperr.NotFound("claim", c.ClaimID)
	}
	return c, nil
}

func scanClaim(row interface{ Scan(...interface{}) error }) (claim.Claim, error) {
	var (
		c         claim.Claim
		valueJSON []byte
	)
	if err := row.Scan(
		&c.ClaimID, &c.TenantID, &c.DealID, &c.ClaimClass, &c.Text, &valueJSON,
		&c.ClaimGrade, &c.ClaimVerdict, &c.ClaimAction, &c.Materiality,
		&c.PrimarySpanID, &c.ExtractionConfidence, &c.DhabtScore,
		&c.IsFactual, &c.IsSubjective, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return claim.Claim{}, err
	}
	if len(valueJSON) > 0 && string(valueJSON) != "null" {
		var v valuestruct.Value
		if err := json.Unmarshal(valueJSON, &v); err != nil {
			return claim.Claim{}, err
		}
		c.Value = &v
	}
	return c, nil
}

const claimColumns = `
	claim_id, tenant_id, deal_id, claim_class, text, value,
	claim_grade, claim_verdict, claim_action, materiality,
	primary_span_id, extraction_confidence, dhabt_score,
	is_factual, is_subjective, created_at, updated_at
`

// GetClaim implements storage.ClaimStore.
func (s *Store) GetClaim(ctx context.Context, tenantID, claimID string) (claim.Claim, error) {
	row := DBTXFromContext(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+claimColumns+`
		FROM idis_claims
		WHERE claim_id = $1 AND tenant_id = $2
	`, claimID, tenantID)

	c, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return claim.Claim{}, apperr.NotFound("claim", claimID)
	}
	return c, err
}

// ListClaims implements storage.ClaimStore with keyset pagination on
// created_at, claim_id.
func (s *Store) ListClaims(ctx context.Context, tenantID, dealID string, limit int, cursor string) (storage.Page[claim.Claim], error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows *sql.Rows
		err  error
	)
	if cursor == "" {
		rows, err = DBTXFromContext(ctx, s.db).QueryContext(ctx, `
			SELECT `+claimColumns+`
			FROM idis_claims
			WHERE tenant_id = $1 AND deal_id = $2
			ORDER BY created_at, claim_id
			LIMIT $3
		`, tenantID, dealID, limit+1)
	} else {
		rows, err = DBTXFromContext(ctx, s.db).QueryContext(ctx, `
			SELECT `+claimColumns+`
			FROM idis_claims
			WHERE tenant_id = $1 AND deal_id = $2 AND claim_id > $3
			ORDER BY created_at, claim_id
			LIMIT $4
		`, tenantID, dealID, cursor, limit+1)
	}
	if err != nil {
		return storage.Page[claim.Claim]{}, err
	}
	defer rows.Close()

	var items []claim.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return storage.Page[claim.Claim]{}, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return storage.Page[claim.Claim]{}, err
	}

	page := storage.Page[claim.Claim]{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.NextCursor = items[limit-1].ClaimID
	}
	return page, nil
}

// DealIDForClaim implements storage.ClaimStore (spec.md §4.4 gate 5).
func (s *Store) DealIDForClaim(ctx context.Context, tenantID, claimID string) (string, error) {
	row := DBTXFromContext(ctx, s.db).QueryRowContext(ctx, `
		SELECT deal_id FROM idis_claims WHERE claim_id = $1 AND tenant_id = $2
	`, claimID, tenantID)

	var dealID string
	if err := row.Scan(&dealID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperr.NotFound("claim", claimID)
		}
		return "", err
	}
	return dealID, nil
}
