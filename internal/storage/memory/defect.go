package memory

import (
	"context"

	"github.com/albarami/idis/internal/domain/defect"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
)

// CreateDefect implements storage.DefectStore.
func (m *Memory) CreateDefect(_ context.Context, d defect.Defect) (defect.Defect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.DefectID == "" {
		d.DefectID = idgen.New()
	}
	m.defects[d.DefectID] = d
	return d, nil
}

// UpdateDefect implements storage.DefectStore.
func (m *Memory) UpdateDefect(_ context.Context, d defect.Defect) (defect.Defect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.defects[d.DefectID]
	if !ok || existing.TenantID != d.TenantID {
		return defect.Defect{}, apperr.NotFound("defect", d.DefectID)
	}
	m.defects[d.DefectID] = d
	return d, nil
}

// GetDefect implements storage.DefectStore.
func (m *Memory) GetDefect(_ context.Context, tenantID, defectID string) (defect.Defect, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.defects[defectID]
	if !ok || d.TenantID != tenantID {
		return defect.Defect{}, apperr.NotFound("defect", defectID)
	}
	return d, nil
}

// ListDefectsForSanad implements storage.DefectStore.
func (m *Memory) ListDefectsForSanad(_ context.Context, tenantID, sanadID string) ([]defect.Defect, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []defect.Defect
	for _, id := range sortedKeys(m.defects) {
		d := m.defects[id]
		if d.TenantID == tenantID && d.SanadID == sanadID {
			out = append(out, d)
		}
	}
	return out, nil
}
