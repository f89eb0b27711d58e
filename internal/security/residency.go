package security

import (
	"strings"

	"github.com/albarami/idis/internal/platform/apperr"
)

// CheckResidency compares tenantRegion against the service's configured
// region, case-insensitively and whitespace-trimmed (spec.md §4.4 gate 2).
// An unset serviceRegion is a fail-closed configuration error, never an
// implicit pass.
func CheckResidency(tenantRegion, serviceRegion string) error {
	if strings.TrimSpace(serviceRegion) == "" {
		return apperr.ResidencyServiceRegionUnset()
	}
	if !strings.EqualFold(strings.TrimSpace(tenantRegion), strings.TrimSpace(serviceRegion)) {
		return apperr.ResidencyRegionMismatch()
	}
	return nil
}
