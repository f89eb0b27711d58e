package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/albarami/idis/internal/domain/deal"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
	"github.com/albarami/idis/internal/storage"
)

// CreateDeal implements storage.DealStore.
func (s *Store) CreateDeal(ctx context.Context, d deal.Deal) (deal.Deal, error) {
	if d.DealID == "" {
		d.DealID = idgen.New()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	tags, err := json.Marshal(d.Tags)
	if err != nil {
		return deal.Deal{}, err
	}

	_, err = DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		INSERT INTO idis_deals (deal_id, tenant_id, company_name, stage, status, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, d.DealID, d.TenantID, d.CompanyName, d.Stage, d.Status, tags, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return deal.Deal{}, err
	}
	return d, nil
}

// UpdateDeal implements storage.DealStore.
func (s *Store) UpdateDeal(ctx context.Context, d deal.Deal) (deal.Deal, error) {
	existing, err := s.GetDeal(ctx, d.TenantID, d.DealID)
	if err != nil {
		return deal.Deal{}, err
	}
	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = time.Now().UTC()

	tags, err := json.Marshal(d.Tags)
	if err != nil {
		return deal.Deal{}, err
	}

	result, err := DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		UPDATE idis_deals
		SET company_name = $3, stage = $4, status = $5, tags = $6, updated_at = $7
		WHERE deal_id = $1 AND tenant_id = $2
	`, d.DealID, d.TenantID, d.CompanyName, d.Stage, d.Status, tags, d.UpdatedAt)
	if err != nil {
		return deal.Deal{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return deal.Deal{}, apperr.NotFound("deal", d.DealID)
	}
	return d, nil
}

// GetDeal implements storage.DealStore. A deal_id that exists under a
// different tenant_id returns the identical NotFound as a missing deal_id
// (spec.md §8 property 4).
func (s *Store) GetDeal(ctx context.Context, tenantID, dealID string) (deal.Deal, error) {
	row := DBTXFromContext(ctx, s.db).QueryRowContext(ctx, `
		SELECT deal_id, tenant_id, company_name, stage, status, tags, created_at, updated_at
		FROM idis_deals
		WHERE deal_id = $1 AND tenant_id = $2
	`, dealID, tenantID)

	var (
		d       deal.Deal
		tagsRaw []byte
	)
	if err := row.Scan(&d.DealID, &d.TenantID, &d.CompanyName, &d.Stage, &d.Status, &tagsRaw, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return deal.Deal{}, apperr.NotFound("deal", dealID)
		}
		return deal.Deal{}, err
	}
	if len(tagsRaw) > 0 {
		_ = json.Unmarshal(tagsRaw, &d.Tags)
	}
	return d, nil
}

// ListDeals implements storage.DealStore with keyset pagination: cursor is
// the deal_id to resume after, ordered by created_at then deal_id ascending.
func (s *Store) ListDeals(ctx context.Context, tenantID string, limit int, cursor string) (storage.Page[deal.Deal], error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows *sql.Rows
		err  error
	)
	if cursor == "" {
		rows, err = DBTXFromContext(ctx, s.db).QueryContext(ctx, `
			SELECT deal_id, tenant_id, company_name, stage, status, tags, created_at, updated_at
			FROM idis_deals
			WHERE tenant_id = $1
			ORDER BY created_at, deal_id
			LIMIT $2
		`, tenantID, limit+1)
	} else {
		rows, err = DBTXFromContext(ctx, s.db).QueryContext(ctx, `
			SELECT deal_id, tenant_id, company_name, stage, status, tags, created_at, updated_at
			FROM idis_deals
			WHERE tenant_id = $1 AND deal_id > $2
			ORDER BY created_at, deal_id
			LIMIT $3
		`, tenantID, cursor, limit+1)
	}
	if err != nil {
		return storage.Page[deal.Deal]{}, err
	}
	defer rows.Close()

	var items []deal.Deal
	for rows.Next() {
		var (
			d       deal.Deal
			tagsRaw []byte
		)
		if err := rows.Scan(&d.DealID, &d.TenantID, &d.CompanyName, &d.Stage, &d.Status, &tagsRaw, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return storage.Page[deal.Deal]{}, err
		}
		if len(tagsRaw) > 0 {
			_ = json.Unmarshal(tagsRaw, &d.Tags)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return storage.Page[deal.Deal]{}, err
	}

	page := storage.Page[deal.Deal]{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.NextCursor = items[limit-1].DealID
	}
	return page, nil
}
