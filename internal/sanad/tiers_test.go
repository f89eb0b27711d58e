package sanad

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/albarami/idis/internal/domain/claim"
)

func TestAssignTier_NilOrUnsetDefaultsToT5(t *testing.T) {
	assert.Equal(t, TierT5, AssignTier(nil))
	assert.Equal(t, TierT5, AssignTier(&SourceProfile{}))
}

func TestAssignTier_ReturnsDeclaredTier(t *testing.T) {
	assert.Equal(t, TierT2, AssignTier(&SourceProfile{Tier: TierT2}))
}

func TestTierToBaseGrade_MapsEachTier(t *testing.T) {
	assert.Equal(t, claim.GradeA, TierToBaseGrade(TierT1))
	assert.Equal(t, claim.GradeB, TierToBaseGrade(TierT2))
	assert.Equal(t, claim.GradeC, TierToBaseGrade(TierT3))
	assert.Equal(t, claim.GradeC, TierToBaseGrade(TierT4))
	assert.Equal(t, claim.GradeD, TierToBaseGrade(TierT5))
}

func TestTierToBaseGrade_UnknownTierDefaultsToD(t *testing.T) {
	assert.Equal(t, claim.GradeD, TierToBaseGrade(Tier("UNKNOWN")))
}

func TestTierWeightOf_DecreasesFromT1ToT5(t *testing.T) {
	assert.True(t, TierWeightOf(TierT1).GreaterThan(TierWeightOf(TierT2)))
	assert.True(t, TierWeightOf(TierT2).GreaterThan(TierWeightOf(TierT3)))
}

func TestTierWeightOf_UnknownTierIsZero(t *testing.T) {
	assert.True(t, TierWeightOf(Tier("UNKNOWN")).Equal(decimal.Zero))
}

func TestTierUsageOf_T1AndT2AreFullWeight(t *testing.T) {
	assert.Equal(t, UsageFull, TierUsageOf(TierT1))
	assert.Equal(t, UsageFull, TierUsageOf(TierT2))
}

func TestTierUsageOf_T3AndBelowAreSupportOnly(t *testing.T) {
	assert.Equal(t, UsageSupportOnly, TierUsageOf(TierT3))
	assert.Equal(t, UsageSupportOnly, TierUsageOf(TierT5))
	assert.Equal(t, UsageSupportOnly, TierUsageOf(Tier("UNKNOWN")))
}

func TestCheckTierAdmissibility_CapsHighMaterialityBelowT3(t *testing.T) {
	admissible, cap := CheckTierAdmissibility(TierT4, claim.MaterialityHigh)

	assert.False(t, admissible)
	assert.Equal(t, claim.GradeC, cap)
}

func TestCheckTierAdmissibility_AdmitsT3OrAboveForHighMateriality(t *testing.T) {
	admissible, cap := CheckTierAdmissibility(TierT3, claim.MaterialityCritical)

	assert.True(t, admissible)
	assert.Empty(t, cap)
}

func TestCheckTierAdmissibility_LowOrMediumMaterialityNeverCapped(t *testing.T) {
	admissible, cap := CheckTierAdmissibility(TierT5, claim.MaterialityLow)

	assert.True(t, admissible)
	assert.Empty(t, cap)
}
