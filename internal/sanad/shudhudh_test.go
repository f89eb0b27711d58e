package sanad

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albarami/idis/internal/domain/defect"
)

func valPtr(s string) *decimal.Decimal { v := d(s); return &v }

func TestDetectShudhudh_SingleValueHasNoAnomaly(t *testing.T) {
	result := DetectShudhudh([]SourceProfile{{Tier: TierT1, Value: valPtr("100")}})

	assert.False(t, result.HasAnomaly)
}

func TestDetectShudhudh_ValuesWithinRoundingToleranceReconcile(t *testing.T) {
	result := DetectShudhudh([]SourceProfile{
		{Tier: TierT1, Value: valPtr("100.00")},
		{Tier: TierT2, Value: valPtr("100.50")},
	})

	assert.False(t, result.HasAnomaly)
	require.NotEmpty(t, result.Attempts)
	assert.Equal(t, "ROUNDING", result.Attempts[0].Kind)
	assert.True(t, result.Attempts[0].Success)
}

func TestDetectShudhudh_UnitConversionReconcilesThousandXDiscrepancy(t *testing.T) {
	result := DetectShudhudh([]SourceProfile{
		{Tier: TierT1, Value: valPtr("5000"), Unit: "USD"},
		{Tier: TierT2, Value: valPtr("5"), Unit: "KUSD"},
	})

	assert.False(t, result.HasAnomaly)
	require.NotNil(t, result.Defect)
	assert.Equal(t, defect.TypeUnitMismatch, result.Defect.Type)
}

func TestDetectShudhudh_DifferentTimeWindowsReconcileWithoutAnomaly(t *testing.T) {
	result := DetectShudhudh([]SourceProfile{
		{Tier: TierT1, Value: valPtr("100"), TimeWindowLabel: "Q1-2026"},
		{Tier: TierT2, Value: valPtr("400"), TimeWindowLabel: "FY-2026"},
	})

	assert.False(t, result.HasAnomaly)
	require.NotNil(t, result.Defect)
	assert.Equal(t, defect.TypeTimeWindowMismatch, result.Defect.Type)
}

func TestDetectShudhudh_SupportOnlyTierContradictingConsensusIsAnomaly(t *testing.T) {
	result := DetectShudhudh([]SourceProfile{
		{Tier: TierT1, Value: valPtr("100")},
		{Tier: TierT2, Value: valPtr("100")},
		{Tier: TierT4, Value: valPtr("500")},
	})

	assert.True(t, result.HasAnomaly)
	require.NotNil(t, result.Defect)
	assert.Equal(t, defect.TypeShudhudhAnomaly, result.Defect.Type)
	assert.Equal(t, defect.SeverityMajor, result.Defect.Severity)
}

func TestDetectShudhudh_FullAgreementAcrossAllTiersHasNoAnomaly(t *testing.T) {
	result := DetectShudhudh([]SourceProfile{
		{Tier: TierT1, Value: valPtr("100")},
		{Tier: TierT1, Value: valPtr("100")},
	})

	assert.False(t, result.HasAnomaly)
}
