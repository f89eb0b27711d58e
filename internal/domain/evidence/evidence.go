// Package evidence defines the Evidence entity: an item supporting a claim.
package evidence

import (
	"time"

	"github.com/albarami/idis/internal/domain/claim"
)

// VerificationStatus is the closed set of evidence verification states.
type VerificationStatus string

const (
	VerificationUnverified    VerificationStatus = "UNVERIFIED"
	VerificationHumanVerified VerificationStatus = "HUMAN_VERIFIED"
	VerificationDualVerified  VerificationStatus = "DUAL_VERIFIED"
)

// Evidence supports a claim with a source-graded span.
type Evidence struct {
	EvidenceID         string
	TenantID           string
	ClaimID            string
	SourceSpanID       string
	SourceGrade        claim.Grade
	SourceSystem       string
	UpstreamOriginID   string
	VerificationStatus VerificationStatus
	CreatedAt          time.Time
}

// IsHumanVerified reports whether this evidence item already cleared human
// review (used by the Calc Engine extraction-confidence gate bypass).
func (e Evidence) IsHumanVerified() bool {
	return e.VerificationStatus == VerificationHumanVerified || e.VerificationStatus == VerificationDualVerified
}
