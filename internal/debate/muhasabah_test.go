package debate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaindebate "github.com/albarami/idis/internal/domain/debate"
	"github.com/albarami/idis/internal/platform/apperr"
)

func validOutput() *domaindebate.AgentOutput {
	return &domaindebate.AgentOutput{
		OutputID: "output-1",
		Content:  map[string]interface{}{"text": "ARR grew 3x year over year"},
		Muhasabah: &domaindebate.MuhasabahRecord{
			SupportedClaimIDs: []string{"claim-1"},
			Confidence:        decimal.RequireFromString("0.5"),
		},
	}
}

func rejectionReason(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	reason, _ := appErr.Details["reason_code"].(string)
	return reason
}

func TestEvaluateOutput_AcceptsWellFormedOutput(t *testing.T) {
	assert.NoError(t, EvaluateOutput(validOutput()))
}

func TestEvaluateOutput_RejectsNilOutput(t *testing.T) {
	err := EvaluateOutput(nil)
	require.Error(t, err)
	assert.Equal(t, ReasonMissingOutput, rejectionReason(t, err))
}

func TestEvaluateOutput_RejectsMissingMuhasabah(t *testing.T) {
	out := validOutput()
	out.Muhasabah = nil

	err := EvaluateOutput(out)
	require.Error(t, err)
	assert.Equal(t, ReasonMissingMuhasabah, rejectionReason(t, err))
}

func TestEvaluateOutput_RejectsFactualOutputWithoutClaimRefs(t *testing.T) {
	out := validOutput()
	out.Muhasabah.SupportedClaimIDs = nil

	err := EvaluateOutput(out)
	require.Error(t, err)
	assert.Equal(t, ReasonNoClaimRefs, rejectionReason(t, err))
}

func TestEvaluateOutput_SubjectiveOutputIsExemptFromClaimRefs(t *testing.T) {
	out := validOutput()
	out.Muhasabah.SupportedClaimIDs = nil
	out.Muhasabah.IsSubjective = true

	assert.NoError(t, EvaluateOutput(out))
}

func TestEvaluateOutput_RejectsRecommendationWithoutFalsifiabilityTests(t *testing.T) {
	out := validOutput()
	rec := "proceed to term sheet"
	out.Muhasabah.Recommendation = &rec

	err := EvaluateOutput(out)
	require.Error(t, err)
	assert.Equal(t, ReasonNoFalsifiability, rejectionReason(t, err))
}

func TestEvaluateOutput_AcceptsRecommendationWithFalsifiabilityTests(t *testing.T) {
	out := validOutput()
	rec := "proceed to term sheet"
	out.Muhasabah.Recommendation = &rec
	out.Muhasabah.FalsifiabilityTests = []string{"verify ARR against bank statements"}

	assert.NoError(t, EvaluateOutput(out))
}

func TestEvaluateOutput_RejectsOverconfidenceWithoutUncertainties(t *testing.T) {
	out := validOutput()
	out.Muhasabah.Confidence = decimal.RequireFromString("0.95")

	err := EvaluateOutput(out)
	require.Error(t, err)
	assert.Equal(t, ReasonOverconfident, rejectionReason(t, err))
}

func TestEvaluateOutput_HighConfidenceWithUncertaintiesIsAccepted(t *testing.T) {
	out := validOutput()
	out.Muhasabah.Confidence = decimal.RequireFromString("0.95")
	out.Muhasabah.Uncertainties = []string{"sample size is small"}

	assert.NoError(t, EvaluateOutput(out))
}
