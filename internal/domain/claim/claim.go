// Package claim defines the Claim entity: a proposition extracted from
// document spans, typed by claim_class and optionally carrying a structured
// ValueStruct.
package claim

import (
	"time"

	"github.com/albarami/idis/internal/domain/valuestruct"
	"github.com/shopspring/decimal"
)

// Class is the closed set of claim classifications.
type Class string

const (
	ClassFinancial   Class = "FINANCIAL"
	ClassTraction    Class = "TRACTION"
	ClassMarketSize  Class = "MARKET_SIZE"
	ClassCompetition Class = "COMPETITION"
	ClassTeam        Class = "TEAM"
	ClassLegalTerms  Class = "LEGAL_TERMS"
	ClassTechnical   Class = "TECHNICAL"
	ClassOther       Class = "OTHER"
)

// Grade is the closed A/B/C/D evidentiary grade.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// Rank orders grades worst-to-best-independent comparisons; lower is worse.
func (g Grade) Rank() int {
	switch g {
	case GradeA:
		return 3
	case GradeB:
		return 2
	case GradeC:
		return 1
	default:
		return 0
	}
}

// Worse returns the worse (lower-ranked) of two grades.
func Worse(a, b Grade) Grade {
	if a.Rank() <= b.Rank() {
		return a
	}
	return b
}

// Verdict is the closed set of claim verdicts.
type Verdict string

const (
	VerdictUnverified   Verdict = "UNVERIFIED"
	VerdictVerified     Verdict = "VERIFIED"
	VerdictInflated     Verdict = "INFLATED"
	VerdictContradicted Verdict = "CONTRADICTED"
	VerdictSubjective   Verdict = "SUBJECTIVE"
)

// Action is the closed set of follow-up actions on a claim.
type Action string

const (
	ActionNone      Action = "NONE"
	ActionFlag      Action = "FLAG"
	ActionVerify    Action = "VERIFY"
	ActionHumanGate Action = "HUMAN_GATE"
	ActionRedFlag   Action = "RED_FLAG"
)

// Materiality is the closed set of claim materiality levels.
type Materiality string

const (
	MaterialityLow      Materiality = "LOW"
	MaterialityMedium   Materiality = "MEDIUM"
	MaterialityHigh     Materiality = "HIGH"
	MaterialityCritical Materiality = "CRITICAL"
)

// IsHighOrCritical reports whether m requires the §4.2 tier-admissibility cap.
func (m Materiality) IsHighOrCritical() bool {
	return m == MaterialityHigh || m == MaterialityCritical
}

// Claim is a proposition extracted from one or more spans.
type Claim struct {
	ClaimID              string
	TenantID             string
	DealID               string
	ClaimClass           Class
	Text                 string
	Value                *valuestruct.Value
	ClaimGrade           Grade
	ClaimVerdict         Verdict
	ClaimAction          Action
	Materiality          Materiality
	PrimarySpanID        string
	ExtractionConfidence decimal.Decimal
	DhabtScore           decimal.Decimal
	IsFactual            bool
	IsSubjective         bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// New constructs a Claim with the required default grade (spec.md §3: claim
// starts at grade D until graded).
func New(tenantID, dealID string, class Class) Claim {
	now := time.Now().UTC()
	return Claim{
		TenantID:     tenantID,
		DealID:       dealID,
		ClaimClass:   class,
		ClaimGrade:   GradeD,
		ClaimVerdict: VerdictUnverified,
		ClaimAction:  ActionNone,
		Materiality:  MaterialityLow,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasEvidenceRequirement reports whether the claim is subject to the §3
// invariant requiring at least one Evidence or Calculation reference.
func (c Claim) HasEvidenceRequirement() bool {
	return c.IsFactual && !c.IsSubjective
}
