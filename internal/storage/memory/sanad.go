package memory

import (
	"context"

	"github.com/albarami/idis/internal/domain/sanad"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
)

// SaveSanad implements storage.SanadStore.
func (m *Memory) SaveSanad(_ context.Context, s sanad.Sanad) (sanad.Sanad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.SanadID == "" {
		s.SanadID = idgen.New()
	}
	m.sanads[s.SanadID] = s
	m.sanadByClaim[s.TenantID+"|"+s.ClaimID] = s.SanadID
	return s, nil
}

// GetSanad implements storage.SanadStore.
func (m *Memory) GetSanad(_ context.Context, tenantID, sanadID string) (sanad.Sanad, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sanads[sanadID]
	if !ok || s.TenantID != tenantID {
		return sanad.Sanad{}, apperr.NotFound("sanad", sanadID)
	}
	return s, nil
}

// GetSanadForClaim implements storage.SanadStore.
func (m *Memory) GetSanadForClaim(_ context.Context, tenantID, claimID string) (sanad.Sanad, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.sanadByClaim[tenantID+"|"+claimID]
	if !ok {
		return sanad.Sanad{}, apperr.NotFound("sanad", claimID)
	}
	s, ok := m.sanads[id]
	if !ok || s.TenantID != tenantID {
		return sanad.Sanad{}, apperr.NotFound("sanad", claimID)
	}
	return s, nil
}
