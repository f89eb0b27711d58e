package claim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_StartsAtGradeDUnverifiedAndLowMateriality(t *testing.T) {
	c := New("tenant-1", "deal-1", ClassFinancial)

	assert.Equal(t, GradeD, c.ClaimGrade)
	assert.Equal(t, VerdictUnverified, c.ClaimVerdict)
	assert.Equal(t, ActionNone, c.ClaimAction)
	assert.Equal(t, MaterialityLow, c.Materiality)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestGrade_Rank_OrdersAToDDescending(t *testing.T) {
	assert.Greater(t, GradeA.Rank(), GradeB.Rank())
	assert.Greater(t, GradeB.Rank(), GradeC.Rank())
	assert.Greater(t, GradeC.Rank(), GradeD.Rank())
}

func TestWorse_ReturnsLowerRankedGrade(t *testing.T) {
	assert.Equal(t, GradeC, Worse(GradeA, GradeC))
	assert.Equal(t, GradeD, Worse(GradeD, GradeA))
}

func TestWorse_TiesPreferFirstArgument(t *testing.T) {
	assert.Equal(t, GradeB, Worse(GradeB, GradeB))
}

func TestMateriality_IsHighOrCritical(t *testing.T) {
	assert.True(t, MaterialityHigh.IsHighOrCritical())
	assert.True(t, MaterialityCritical.IsHighOrCritical())
	assert.False(t, MaterialityMedium.IsHighOrCritical())
	assert.False(t, MaterialityLow.IsHighOrCritical())
}

func TestClaim_HasEvidenceRequirement_FactualAndNotSubjective(t *testing.T) {
	c := Claim{IsFactual: true, IsSubjective: false}
	assert.True(t, c.HasEvidenceRequirement())

	c.IsSubjective = true
	assert.False(t, c.HasEvidenceRequirement())

	c = Claim{IsFactual: false}
	assert.False(t, c.HasEvidenceRequirement())
}
