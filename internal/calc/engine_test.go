package calc

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaincalc "github.com/albarami/idis/internal/domain/calc"
	"github.com/albarami/idis/internal/domain/claim"
)

func gradedInput(claimID string) domaincalc.InputGradeInfo {
	return domaincalc.InputGradeInfo{
		ClaimID:              claimID,
		Grade:                claim.GradeA,
		IsMaterial:           true,
		ExtractionConfidence: decimal.RequireFromString("0.99"),
		DhabtScore:           decimal.RequireFromString("0.95"),
	}
}

func TestEngine_Run_ComputesRunway(t *testing.T) {
	engine := NewEngine(NewCoreRegistry())

	result, err := engine.Run(context.Background(), RunRequest{
		TenantID: "tenant-1",
		DealID:   "deal-1",
		CalcType: "RUNWAY",
		Inputs:   []domaincalc.InputGradeInfo{gradedInput("claim-1"), gradedInput("claim-2")},
		Values: map[string]decimal.Decimal{
			"cash_balance":      decimal.RequireFromString("1200000"),
			"monthly_burn_rate": decimal.RequireFromString("100000"),
		},
	})

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12").Equal(result.Calculation.Output.PrimaryValue))
	assert.NotEmpty(t, result.Calculation.ReproducibilityHash)
	assert.Equal(t, []string{"claim-1", "claim-2"}, result.Calculation.InputClaimIDs)
}

func TestEngine_Run_UnsupportedCalcType(t *testing.T) {
	engine := NewEngine(NewCoreRegistry())

	_, err := engine.Run(context.Background(), RunRequest{CalcType: "NOT_A_FORMULA"})

	require.Error(t, err)
	var unsupported *CalcUnsupportedValueError
	require.ErrorAs(t, err, &unsupported)
}

func TestEngine_Run_MissingRequiredInputListsAll(t *testing.T) {
	engine := NewEngine(NewCoreRegistry())

	_, err := engine.Run(context.Background(), RunRequest{
		CalcType: "RUNWAY",
		Inputs:   []domaincalc.InputGradeInfo{gradedInput("claim-1")},
		Values:   map[string]decimal.Decimal{},
	})

	require.Error(t, err)
	var missing *CalcMissingInputError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{"cash_balance", "monthly_burn_rate"}, missing.Missing)
}

func TestEngine_Run_ExtractionGateBlocksLowConfidenceInput(t *testing.T) {
	engine := NewEngine(NewCoreRegistry())
	lowConfidence := gradedInput("claim-1")
	lowConfidence.ExtractionConfidence = decimal.RequireFromString("0.10")

	_, err := engine.Run(context.Background(), RunRequest{
		CalcType: "RUNWAY",
		Inputs:   []domaincalc.InputGradeInfo{lowConfidence},
		Values: map[string]decimal.Decimal{
			"cash_balance":      decimal.RequireFromString("1200000"),
			"monthly_burn_rate": decimal.RequireFromString("100000"),
		},
	})

	require.Error(t, err)
}

func TestEngine_Run_SameInputsProduceSameReproducibilityHash(t *testing.T) {
	engine := NewEngine(NewCoreRegistry())
	req := RunRequest{
		TenantID: "tenant-1",
		DealID:   "deal-1",
		CalcType: "GROSS_MARGIN",
		Inputs:   []domaincalc.InputGradeInfo{gradedInput("claim-1")},
		Values: map[string]decimal.Decimal{
			"revenue": decimal.RequireFromString("100"),
			"cogs":    decimal.RequireFromString("40"),
		},
	}

	first, err := engine.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, first.Calculation.Output.PrimaryValue.Equal(second.Calculation.Output.PrimaryValue))
	assert.NoError(t, engine.VerifyReproducibility(first.Calculation))
}

func TestEngine_VerifyReproducibility_DetectsTamperedOutput(t *testing.T) {
	engine := NewEngine(NewCoreRegistry())
	result, err := engine.Run(context.Background(), RunRequest{
		CalcType: "GROSS_MARGIN",
		Inputs:   []domaincalc.InputGradeInfo{gradedInput("claim-1")},
		Values: map[string]decimal.Decimal{
			"revenue": decimal.RequireFromString("100"),
			"cogs":    decimal.RequireFromString("40"),
		},
	})
	require.NoError(t, err)

	result.Calculation.Output.PrimaryValue = decimal.RequireFromString("999")

	err = engine.VerifyReproducibility(result.Calculation)
	assert.Error(t, err)
}

func TestGradeOf_ReturnsRecordedGradeOrDefaultsToD(t *testing.T) {
	inputs := []domaincalc.InputGradeInfo{{ClaimID: "claim-1", Grade: claim.GradeB}}

	assert.Equal(t, claim.GradeB, GradeOf(inputs, "claim-1"))
	assert.Equal(t, claim.GradeD, GradeOf(inputs, "unknown"))
}
