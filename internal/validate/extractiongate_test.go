package validate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albarami/idis/internal/domain/calc"
)

func TestExtractionConfidenceGate_PassesAboveThresholds(t *testing.T) {
	inputs := []calc.InputGradeInfo{
		{ClaimID: "claim-1", ExtractionConfidence: decimal.RequireFromString("0.97"), DhabtScore: decimal.RequireFromString("0.92")},
	}

	assert.NoError(t, ExtractionConfidenceGate(inputs))
}

func TestExtractionConfidenceGate_BlocksLowConfidence(t *testing.T) {
	inputs := []calc.InputGradeInfo{
		{ClaimID: "claim-1", ExtractionConfidence: decimal.RequireFromString("0.80"), DhabtScore: decimal.RequireFromString("0.92")},
	}

	err := ExtractionConfidenceGate(inputs)
	require.Error(t, err)
	var gateErr *ExtractionGateBlockedError
	require.ErrorAs(t, err, &gateErr)
	assert.Equal(t, []string{"claim-1"}, gateErr.BlockedClaimIDs)
}

func TestExtractionConfidenceGate_BlocksLowDhabt(t *testing.T) {
	inputs := []calc.InputGradeInfo{
		{ClaimID: "claim-1", ExtractionConfidence: decimal.RequireFromString("0.97"), DhabtScore: decimal.RequireFromString("0.50")},
	}

	err := ExtractionConfidenceGate(inputs)
	require.Error(t, err)
}

func TestExtractionConfidenceGate_HumanVerifiedBypassesThresholds(t *testing.T) {
	inputs := []calc.InputGradeInfo{
		{ClaimID: "claim-1", IsHumanVerified: true, ExtractionConfidence: decimal.Zero, DhabtScore: decimal.Zero},
	}

	assert.NoError(t, ExtractionConfidenceGate(inputs))
}

func TestExtractionConfidenceGate_DualVerifiedMethodBypassesThresholds(t *testing.T) {
	inputs := []calc.InputGradeInfo{
		{ClaimID: "claim-1", VerificationMethod: "DUAL_VERIFIED", ExtractionConfidence: decimal.Zero, DhabtScore: decimal.Zero},
	}

	assert.NoError(t, ExtractionConfidenceGate(inputs))
}

func TestExtractionConfidenceGate_MissingClaimIDIsBlocked(t *testing.T) {
	inputs := []calc.InputGradeInfo{
		{ExtractionConfidence: decimal.RequireFromString("0.97"), DhabtScore: decimal.RequireFromString("0.92")},
	}

	err := ExtractionConfidenceGate(inputs)
	require.Error(t, err)
	var gateErr *ExtractionGateBlockedError
	require.ErrorAs(t, err, &gateErr)
	assert.Equal(t, []string{"<missing_claim_id>"}, gateErr.BlockedClaimIDs)
}

func TestExtractionConfidenceGate_ListsAllBlockedInputsNotJustFirst(t *testing.T) {
	inputs := []calc.InputGradeInfo{
		{ClaimID: "claim-1", ExtractionConfidence: decimal.RequireFromString("0.10"), DhabtScore: decimal.RequireFromString("0.92")},
		{ClaimID: "claim-2", ExtractionConfidence: decimal.RequireFromString("0.97"), DhabtScore: decimal.RequireFromString("0.10")},
		{ClaimID: "claim-3", ExtractionConfidence: decimal.RequireFromString("0.97"), DhabtScore: decimal.RequireFromString("0.92")},
	}

	err := ExtractionConfidenceGate(inputs)
	require.Error(t, err)
	var gateErr *ExtractionGateBlockedError
	require.ErrorAs(t, err, &gateErr)
	assert.ElementsMatch(t, []string{"claim-1", "claim-2"}, gateErr.BlockedClaimIDs)
}
