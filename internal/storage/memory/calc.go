package memory

import (
	"context"

	"github.com/albarami/idis/internal/domain/calc"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
)

// SaveCalculation implements storage.CalcStore.
func (m *Memory) SaveCalculation(_ context.Context, c calc.DeterministicCalculation) (calc.DeterministicCalculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.CalcID == "" {
		c.CalcID = idgen.New()
	}
	m.calcs[c.CalcID] = c
	return c, nil
}

// GetCalculation implements storage.CalcStore.
func (m *Memory) GetCalculation(_ context.Context, tenantID, calcID string) (calc.DeterministicCalculation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.calcs[calcID]
	if !ok || c.TenantID != tenantID {
		return calc.DeterministicCalculation{}, apperr.NotFound("calculation", calcID)
	}
	return c, nil
}

// SaveCalcSanad implements storage.CalcStore.
func (m *Memory) SaveCalcSanad(_ context.Context, s calc.CalcSanad) (calc.CalcSanad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.CalcSanadID == "" {
		s.CalcSanadID = idgen.New()
	}
	m.calcSanads[s.CalcID] = s
	return s, nil
}

// GetCalcSanad implements storage.CalcStore.
func (m *Memory) GetCalcSanad(_ context.Context, tenantID, calcID string) (calc.CalcSanad, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.calcSanads[calcID]
	if !ok || s.TenantID != tenantID {
		return calc.CalcSanad{}, apperr.NotFound("calc_sanad", calcID)
	}
	return s, nil
}
