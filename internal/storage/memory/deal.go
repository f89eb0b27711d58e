package memory

import (
	"context"

	"github.com/albarami/idis/internal/domain/deal"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
	"github.com/albarami/idis/internal/storage"
)

// CreateDeal implements storage.DealStore.
func (m *Memory) CreateDeal(_ context.Context, d deal.Deal) (deal.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.DealID == "" {
		d.DealID = idgen.New()
	}
	m.deals[d.DealID] = d
	return d, nil
}

// UpdateDeal implements storage.DealStore.
func (m *Memory) UpdateDeal(_ context.Context, d deal.Deal) (deal.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.deals[d.DealID]
	if !ok || existing.TenantID != d.TenantID {
		return deal.Deal{}, apperr.NotFound("deal", d.DealID)
	}
	m.deals[d.DealID] = d
	return d, nil
}

// GetDeal implements storage.DealStore. Cross-tenant lookups fail closed
// with the same not-found shape as a missing ID (spec.md §8 property 4).
func (m *Memory) GetDeal(_ context.Context, tenantID, dealID string) (deal.Deal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.deals[dealID]
	if !ok || d.TenantID != tenantID {
		return deal.Deal{}, apperr.NotFound("deal", dealID)
	}
	return d, nil
}

// ListDeals implements storage.DealStore with simple cursor-free pagination:
// the in-memory store only ever holds test-sized data, so it returns
// everything up to limit in deal-ID order and an empty NextCursor.
func (m *Memory) ListDeals(_ context.Context, tenantID string, limit int, _ string) (storage.Page[deal.Deal], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []deal.Deal
	for _, id := range sortedKeys(m.deals) {
		d := m.deals[id]
		if d.TenantID != tenantID {
			continue
		}
		out = append(out, d)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return storage.Page[deal.Deal]{Items: out}, nil
}
