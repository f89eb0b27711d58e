package memory

import (
	"context"

	"github.com/albarami/idis/internal/domain/evidence"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
)

// CreateEvidence implements storage.EvidenceStore.
func (m *Memory) CreateEvidence(_ context.Context, e evidence.Evidence) (evidence.Evidence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.EvidenceID == "" {
		e.EvidenceID = idgen.New()
	}
	m.evidence[e.EvidenceID] = e
	return e, nil
}

// GetEvidence implements storage.EvidenceStore.
func (m *Memory) GetEvidence(_ context.Context, tenantID, evidenceID string) (evidence.Evidence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.evidence[evidenceID]
	if !ok || e.TenantID != tenantID {
		return evidence.Evidence{}, apperr.NotFound("evidence", evidenceID)
	}
	return e, nil
}

// ListEvidenceForClaim implements storage.EvidenceStore.
func (m *Memory) ListEvidenceForClaim(_ context.Context, tenantID, claimID string) ([]evidence.Evidence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []evidence.Evidence
	for _, id := range sortedKeys(m.evidence) {
		e := m.evidence[id]
		if e.TenantID == tenantID && e.ClaimID == claimID {
			out = append(out, e)
		}
	}
	return out, nil
}
