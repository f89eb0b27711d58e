package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/albarami/idis/internal/deliverable"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
	"github.com/albarami/idis/internal/storage"
)

var _ storage.DeliverableStore = (*Store)(nil)

// CreateDeliverable implements storage.DeliverableStore.
func (s *Store) CreateDeliverable(ctx context.Context, d deliverable.Record) (deliverable.Record, error) {
	if d.DeliverableID == "" {
		d.DeliverableID = idgen.New()
	}
	if d.GeneratedAt.IsZero() {
		d.GeneratedAt = time.Now().UTC()
	}

	_, err := DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		INSERT INTO idis_deliverables (deliverable_id, tenant_id, deal_id, kind, format, content, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, d.DeliverableID, d.TenantID, d.DealID, d.Kind, d.Format, d.ContentBytes, d.GeneratedAt)
	if err != nil {
		return deliverable.Record{}, err
	}
	return d, nil
}

// GetDeliverable implements storage.DeliverableStore.
func (s *Store) GetDeliverable(ctx context.Context, tenantID, deliverableID string) (deliverable.Record, error) {
	row := DBTXFromContext(ctx, s.db).QueryRowContext(ctx, `
		SELECT deliverable_id, tenant_id, deal_id, kind, format, content, generated_at
		FROM idis_deliverables
		WHERE deliverable_id = $1 AND tenant_id = $2
	`, deliverableID, tenantID)

	var d deliverable.Record
	if err := row.Scan(&d.DeliverableID, &d.TenantID, &d.DealID, &d.Kind, &d.Format, &d.ContentBytes, &d.GeneratedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return deliverable.Record{}, apperr.NotFound("deliverable", deliverableID)
		}
		return deliverable.Record{}, err
	}
	return d, nil
}

// ListDeliverablesForDeal implements storage.DeliverableStore.
func (s *Store) ListDeliverablesForDeal(ctx context.Context, tenantID, dealID string) ([]deliverable.Record, error) {
	rows, err := DBTXFromContext(ctx, s.db).QueryContext(ctx, `
		SELECT deliverable_id, tenant_id, deal_id, kind, format, content, generated_at
		FROM idis_deliverables
		WHERE tenant_id = $1 AND deal_id = $2
		ORDER BY generated_at
	`, tenantID, dealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []deliverable.Record
	for rows.Next() {
		var d deliverable.Record
		if err := rows.Scan(&d.DeliverableID, &d.TenantID, &d.DealID, &d.Kind, &d.Format, &d.ContentBytes, &d.GeneratedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListExpired implements storage.DeliverableStore.
func (s *Store) ListExpired(ctx context.Context, cutoff time.Time) ([]deliverable.Record, error) {
	rows, err := DBTXFromContext(ctx, s.db).QueryContext(ctx, `
		SELECT deliverable_id, tenant_id, deal_id, kind, format, content, generated_at
		FROM idis_deliverables
		WHERE generated_at < $1
		ORDER BY generated_at
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []deliverable.Record
	for rows.Next() {
		var d deliverable.Record
		if err := rows.Scan(&d.DeliverableID, &d.TenantID, &d.DealID, &d.Kind, &d.Format, &d.ContentBytes, &d.GeneratedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDeliverable implements storage.DeliverableStore as a hard delete.
// Callers (internal/httpapi, the retention sweep) must run
// security.BlockDeletionIfHeld and the retention-class/admin-approval checks
// before calling this; the store layer itself does not re-check them.
func (s *Store) DeleteDeliverable(ctx context.Context, tenantID, deliverableID string) error {
	result, err := DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		DELETE FROM idis_deliverables WHERE deliverable_id = $1 AND tenant_id = $2
	`, deliverableID, tenantID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperr.NotFound("deliverable", deliverableID)
	}
	return nil
}
