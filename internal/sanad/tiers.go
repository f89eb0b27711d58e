package sanad

import (
	"github.com/albarami/idis/internal/domain/claim"
	"github.com/shopspring/decimal"
)

// Tier is the closed source-tier set, authoritative (T1) to hearsay (T5).
type Tier string

const (
	TierT1 Tier = "T1"
	TierT2 Tier = "T2"
	TierT3 Tier = "T3"
	TierT4 Tier = "T4"
	TierT5 Tier = "T5"
)

// tierOrder gives T1..T5 a numeric rank for comparisons ("below T3" etc).
var tierOrder = map[Tier]int{TierT1: 1, TierT2: 2, TierT3: 3, TierT4: 4, TierT5: 5}

// baseGradeByTier implements spec.md §4.2 step 1: T1→A, T2→B, T3→C, T4→C, T5→D.
var baseGradeByTier = map[Tier]claim.Grade{
	TierT1: claim.GradeA,
	TierT2: claim.GradeB,
	TierT3: claim.GradeC,
	TierT4: claim.GradeC,
	TierT5: claim.GradeD,
}

// tierWeight weights a tier's contribution to Shudhudh's consensus value
// (Tawatur's collusion-risk estimate does not use it). T1 counts fully; each lower tier
// counts for less, consistent with "authoritative -> hearsay".
var tierWeight = map[Tier]decimal.Decimal{
	TierT1: decimal.RequireFromString("1.0"),
	TierT2: decimal.RequireFromString("0.8"),
	TierT3: decimal.RequireFromString("0.6"),
	TierT4: decimal.RequireFromString("0.4"),
	TierT5: decimal.RequireFromString("0.2"),
}

// Usage classifies whether a tier's value can set consensus (FULL) or can
// only be checked against it (SUPPORT_ONLY) — Shudhudh only raises an
// anomaly when a SUPPORT_ONLY source contradicts consensus.
type Usage string

const (
	UsageFull        Usage = "FULL"
	UsageSupportOnly Usage = "SUPPORT_ONLY"
)

// usageByTier: T1/T2 are full-weight sources; T3 and below are support-only.
var usageByTier = map[Tier]Usage{
	TierT1: UsageFull, TierT2: UsageFull,
	TierT3: UsageSupportOnly, TierT4: UsageSupportOnly, TierT5: UsageSupportOnly,
}

// AssignTier returns p's declared tier, defaulting to T5 when unset — fail
// closed per spec.md §4.2 "Missing primary source -> tier T5".
func AssignTier(p *SourceProfile) Tier {
	if p == nil || p.Tier == "" {
		return TierT5
	}
	return p.Tier
}

// TierToBaseGrade implements spec.md §4.2 step 1's tier->grade table.
func TierToBaseGrade(t Tier) claim.Grade {
	if g, ok := baseGradeByTier[t]; ok {
		return g
	}
	return claim.GradeD
}

// TierWeightOf returns t's consensus weight, zero for an unrecognized tier.
func TierWeightOf(t Tier) decimal.Decimal {
	if w, ok := tierWeight[t]; ok {
		return w
	}
	return decimal.Zero
}

// TierUsageOf returns t's usage classification, support-only by default.
func TierUsageOf(t Tier) Usage {
	if u, ok := usageByTier[t]; ok {
		return u
	}
	return UsageSupportOnly
}

// CheckTierAdmissibility implements spec.md §4.2 step 1's admissibility
// rule: claim materiality HIGH/CRITICAL with a tier below T3 caps the final
// grade at C.
func CheckTierAdmissibility(t Tier, materiality claim.Materiality) (admissible bool, cap claim.Grade) {
	if materiality.IsHighOrCritical() && tierOrder[t] > tierOrder[TierT3] {
		return false, claim.GradeC
	}
	return true, ""
}
