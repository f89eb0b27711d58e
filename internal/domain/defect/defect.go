// Package defect defines the Defect entity: a typed fault discovered in a
// Sanad by the I'lal, Shudhudh, or COI passes of the grader.
package defect

import "time"

// Type is the closed catalogue of defect types (spec.md §3).
type Type string

const (
	TypeBrokenChain              Type = "BROKEN_CHAIN"
	TypeConcealment              Type = "CONCEALMENT"
	TypeCircularity              Type = "CIRCULARITY"
	TypeInconsistency            Type = "INCONSISTENCY"
	TypeUnknownSource            Type = "UNKNOWN_SOURCE"
	TypeAnomalyVsStrongerSources Type = "ANOMALY_VS_STRONGER_SOURCES"
	TypeStaleness                Type = "STALENESS"
	TypeUnitMismatch             Type = "UNIT_MISMATCH"
	TypeTimeWindowMismatch       Type = "TIME_WINDOW_MISMATCH"
	TypeScopeDrift               Type = "SCOPE_DRIFT"
	TypeMissingLink              Type = "MISSING_LINK"
	TypeChronoImpossible         Type = "CHRONO_IMPOSSIBLE"
	TypeChainGrafting            Type = "CHAIN_GRAFTING"
	TypeImplausibility           Type = "IMPLAUSIBILITY"

	// I'lal-specific codes referenced directly by spec.md §4.2 step 4.
	TypeIlalChainBreak           Type = "ILAL_CHAIN_BREAK"
	TypeIlalChainGrafting        Type = "ILAL_CHAIN_GRAFTING"
	TypeIlalChronologyImpossible Type = "ILAL_CHRONOLOGY_IMPOSSIBLE"
	TypeIlalVersionDrift         Type = "ILAL_VERSION_DRIFT"
	TypeShudhudhAnomaly          Type = "SHUDHUDH_ANOMALY"
)

// Severity is the closed set of defect severities.
type Severity string

const (
	SeverityFatal Severity = "FATAL"
	SeverityMajor Severity = "MAJOR"
	SeverityMinor Severity = "MINOR"
)

// severityByType is the fixed type→severity mapping from spec.md §3. The
// four ILAL_* codes and SHUDHUDH_ANOMALY, raised directly by name in §4.2
// rather than grouped by catalogue band, are listed here as well, so every
// Type constant above resolves through this map.
var severityByType = map[Type]Severity{
	TypeBrokenChain:              SeverityFatal,
	TypeConcealment:              SeverityFatal,
	TypeCircularity:              SeverityFatal,
	TypeInconsistency:            SeverityMajor,
	TypeUnknownSource:            SeverityMajor,
	TypeAnomalyVsStrongerSources: SeverityMajor,
	TypeStaleness:                SeverityMinor,
	TypeUnitMismatch:             SeverityMinor,
	TypeTimeWindowMismatch:       SeverityMinor,
	TypeScopeDrift:               SeverityMinor,
	TypeMissingLink:              SeverityMajor,
	TypeChronoImpossible:         SeverityFatal,
	TypeChainGrafting:            SeverityFatal,
	TypeImplausibility:           SeverityMajor,
	TypeIlalChainBreak:           SeverityFatal,
	TypeIlalChainGrafting:        SeverityFatal,
	TypeIlalChronologyImpossible: SeverityFatal,
	TypeIlalVersionDrift:         SeverityMajor,
	TypeShudhudhAnomaly:          SeverityMajor,
}

// SeverityFor returns the catalogue severity for t, or SeverityMajor if t is
// not in the catalogue (fail-closed: unknown defects are never treated as
// cosmetic).
func SeverityFor(t Type) Severity {
	if s, ok := severityByType[t]; ok {
		return s
	}
	return SeverityMajor
}

// CureProtocol is the closed set of remediation protocols for a defect.
type CureProtocol string

const (
	CureRequestSource    CureProtocol = "REQUEST_SOURCE"
	CureRequireReaudit   CureProtocol = "REQUIRE_REAUDIT"
	CureHumanArbitration CureProtocol = "HUMAN_ARBITRATION"
	CureReconstructChain CureProtocol = "RECONSTRUCT_CHAIN"
	CureDiscardClaim     CureProtocol = "DISCARD_CLAIM"
)

// Status is the closed set of defect lifecycle states.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusWaived Status = "WAIVED"
	StatusCured  Status = "CURED"
)

// Defect is a typed fault discovered in a Sanad.
type Defect struct {
	DefectID     string
	TenantID     string
	SanadID      string
	ClaimID      string
	DefectType   Type
	Severity     Severity
	CureProtocol CureProtocol
	Status       Status
	Description  string

	WaivedBy     string
	WaivedReason string
	WaivedAt     *time.Time

	CuredBy     string
	CuredReason string
	CuredAt     *time.Time

	CreatedAt time.Time
}

// New constructs a Defect with its catalogue severity already resolved.
func New(tenantID, sanadID, claimID string, t Type, protocol CureProtocol, description string) Defect {
	return Defect{
		TenantID:     tenantID,
		SanadID:      sanadID,
		ClaimID:      claimID,
		DefectType:   t,
		Severity:     SeverityFor(t),
		CureProtocol: protocol,
		Status:       StatusOpen,
		Description:  description,
		CreatedAt:    time.Now().UTC(),
	}
}

// Waive requires a non-empty reason (spec.md §3: waiver/cure both require
// actor and non-empty reason; both are HIGH-severity audit events — enforced
// by the caller via internal/audit, not here).
func (d *Defect) Waive(actor, reason string) error {
	if actor == "" || reason == "" {
		return errEmptyActorOrReason
	}
	now := time.Now().UTC()
	d.Status = StatusWaived
	d.WaivedBy = actor
	d.WaivedReason = reason
	d.WaivedAt = &now
	return nil
}

// Cure requires a non-empty reason, mirroring Waive.
func (d *Defect) Cure(actor, reason string) error {
	if actor == "" || reason == "" {
		return errEmptyActorOrReason
	}
	now := time.Now().UTC()
	d.Status = StatusCured
	d.CuredBy = actor
	d.CuredReason = reason
	d.CuredAt = &now
	return nil
}

var errEmptyActorOrReason = &validationError{"actor and reason are required"}

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }
