package memory

import (
	"context"

	"github.com/albarami/idis/internal/domain/claim"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
	"github.com/albarami/idis/internal/storage"
)

// CreateClaim implements storage.ClaimStore.
func (m *Memory) CreateClaim(_ context.Context, c claim.Claim) (claim.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ClaimID == "" {
		c.ClaimID = idgen.New()
	}
	m.claims[c.ClaimID] = c
	return c, nil
}

// UpdateClaim implements storage.ClaimStore.
func (m *Memory) UpdateClaim(_ context.Context, c claim.Claim) (claim.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.claims[c.ClaimID]
	if !ok || existing.TenantID != c.TenantID {
		return claim.Claim{}, apperr.NotFound("claim", c.ClaimID)
	}
	m.claims[c.ClaimID] = c
	return c, nil
}

// GetClaim implements storage.ClaimStore.
func (m *Memory) GetClaim(_ context.Context, tenantID, claimID string) (claim.Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.claims[claimID]
	if !ok || c.TenantID != tenantID {
		return claim.Claim{}, apperr.NotFound("claim", claimID)
	}
	return c, nil
}

// ListClaims implements storage.ClaimStore.
func (m *Memory) ListClaims(_ context.Context, tenantID, dealID string, limit int, _ string) (storage.Page[claim.Claim], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []claim.Claim
	for _, id := range sortedKeys(m.claims) {
		c := m.claims[id]
		if c.TenantID != tenantID || c.DealID != dealID {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return storage.Page[claim.Claim]{Items: out}, nil
}

// DealIDForClaim implements storage.ClaimStore (spec.md §4.4 gate 5:
// claim->deal resolution under tenant scope).
func (m *Memory) DealIDForClaim(_ context.Context, tenantID, claimID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.claims[claimID]
	if !ok || c.TenantID != tenantID {
		return "", apperr.NotFound("claim", claimID)
	}
	return c.DealID, nil
}
