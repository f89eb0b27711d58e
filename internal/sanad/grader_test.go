package sanad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albarami/idis/internal/domain/claim"
	domainsanad "github.com/albarami/idis/internal/domain/sanad"
)

func basicSanad() domainsanad.Sanad {
	return domainsanad.Sanad{Nodes: []domainsanad.TransmissionNode{{NodeID: "root"}}}
}

func TestCalculateGrade_T1PrimaryWithFullDabtYieldsGradeA(t *testing.T) {
	result := CalculateGrade(GradeInputs{
		Sanad:   basicSanad(),
		Primary: &SourceProfile{Tier: TierT1, Dabt: DabtDimensions{TimestampPrecision: d("1"), FigurePrecision: d("1"), IdentifierPrecision: d("1"), MethodologyDisclosure: d("1")}},
	})

	assert.Equal(t, claim.GradeA, result.Grade)
	assert.Empty(t, result.AllDefects)
}

func TestCalculateGrade_FatalDefectForcesGradeD(t *testing.T) {
	result := CalculateGrade(GradeInputs{
		Sanad:   domainsanad.Sanad{}, // empty chain -> ILAL_CHAIN_BREAK, fatal
		Primary: &SourceProfile{Tier: TierT1},
	})

	assert.Equal(t, claim.GradeD, result.Grade)
	assert.Contains(t, result.Explanation.Summary, "fatal")
}

func TestCalculateGrade_LowDabtBandCapsGradeAtB(t *testing.T) {
	result := CalculateGrade(GradeInputs{
		Sanad:   basicSanad(),
		Primary: &SourceProfile{Tier: TierT1, Dabt: DabtDimensions{}},
	})

	assert.Equal(t, claim.GradeB, result.Grade)
	assert.Contains(t, result.Explanation.Caps, string(claim.GradeB))
}

func TestCalculateGrade_HighMaterialityBelowT3IsCappedAtC(t *testing.T) {
	result := CalculateGrade(GradeInputs{
		Sanad:   basicSanad(),
		Primary: &SourceProfile{Tier: TierT4, Dabt: DabtDimensions{TimestampPrecision: d("1"), FigurePrecision: d("1"), IdentifierPrecision: d("1"), MethodologyDisclosure: d("1")}},
		Claim:   &ClaimContext{ClaimID: "claim-1", Materiality: claim.MaterialityHigh},
	})

	assert.Equal(t, claim.GradeC, result.Grade)
}

func TestCalculateGrade_MutawatirCorroborationUpgradesGradeWhenNoMajorDefects(t *testing.T) {
	full := DabtDimensions{TimestampPrecision: d("1"), FigurePrecision: d("1"), IdentifierPrecision: d("1"), MethodologyDisclosure: d("1")}
	result := CalculateGrade(GradeInputs{
		Sanad:   basicSanad(),
		Primary: &SourceProfile{Tier: TierT2, IndependenceClusterID: "a", Dabt: full},
		Corroborating: []SourceProfile{
			{Tier: TierT2, IndependenceClusterID: "b"},
			{Tier: TierT2, IndependenceClusterID: "c"},
		},
	})

	require.Contains(t, result.Explanation.Upgrades, "MUTAWATIR corroboration upgrade")
	assert.Equal(t, claim.GradeA, result.Grade)
}

func TestCalculateGrade_UndisclosedCOIIsMajorDefectAndDowngrades(t *testing.T) {
	full := DabtDimensions{TimestampPrecision: d("1"), FigurePrecision: d("1"), IdentifierPrecision: d("1"), MethodologyDisclosure: d("1")}
	result := CalculateGrade(GradeInputs{
		Sanad:   basicSanad(),
		Primary: &SourceProfile{EvidenceID: "ev-1", Tier: TierT1, Dabt: full, COIDisclosed: boolPtr(false)},
	})

	assert.Equal(t, claim.GradeB, result.Grade)
	assert.NotEmpty(t, result.Explanation.Downgrades)
}

func TestCalculateGrade_MissingPrimaryDefaultsToT5(t *testing.T) {
	result := CalculateGrade(GradeInputs{Sanad: basicSanad()})

	assert.Equal(t, TierT5, result.Tier)
}
