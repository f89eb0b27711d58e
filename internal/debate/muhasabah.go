// Package debate implements the adversarial debate loop and its Muḥāsabah
// gate (spec.md §4.8): every agent output is checked fail-closed before the
// next round may consume it.
package debate

import (
	"github.com/shopspring/decimal"

	domaindebate "github.com/albarami/idis/internal/domain/debate"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/validate"
)

// Rejection reason codes, matching the gate's closed reason set.
const (
	ReasonMissingOutput        = "MISSING_OUTPUT"
	ReasonMissingMuhasabah     = "MISSING_MUHASABAH"
	ReasonNoClaimRefs          = "NO_CLAIM_REFS_FOR_FACTUAL_OUTPUT"
	ReasonNoFalsifiability     = "NO_FALSIFIABILITY_FOR_RECOMMENDATION"
	ReasonOverconfident        = "OVERCONFIDENT_WITHOUT_UNCERTAINTIES"
	ReasonNoFreeFactsViolation = "NO_FREE_FACTS_VIOLATION"
)

var overconfidenceThreshold = decimal.RequireFromString("0.80")

// EvaluateOutput runs the full Muḥāsabah gate over output, in the exact
// order spec.md §4.8 lists its checks. It returns a typed
// apperr.MuhasabahRejected on the first failing check (fail-closed,
// deterministic halt) or nil if output clears every check.
func EvaluateOutput(output *domaindebate.AgentOutput) error {
	if output == nil {
		return apperr.MuhasabahRejected(ReasonMissingOutput)
	}
	if output.Muhasabah == nil {
		return apperr.MuhasabahRejected(ReasonMissingMuhasabah)
	}
	m := output.Muhasabah

	if !m.IsSubjective && len(m.SupportedClaimIDs) == 0 {
		return apperr.MuhasabahRejected(ReasonNoClaimRefs)
	}
	if m.Recommendation != nil && len(m.FalsifiabilityTests) == 0 {
		return apperr.MuhasabahRejected(ReasonNoFalsifiability)
	}
	if m.Confidence.GreaterThan(overconfidenceThreshold) && len(m.Uncertainties) == 0 {
		return apperr.MuhasabahRejected(ReasonOverconfident)
	}

	if err := noFreeFactsAtBoundary(output); err != nil {
		return apperr.MuhasabahRejected(ReasonNoFreeFactsViolation)
	}
	return nil
}

// noFreeFactsAtBoundary projects output's content into validate.Fact rows
// and runs the same No-Free-Facts check the deliverable renderer runs,
// since spec.md §4.8 requires the identical rule apply "at the output
// boundary" of every debate turn, not just at final deliverable assembly.
func noFreeFactsAtBoundary(output *domaindebate.AgentOutput) error {
	text, _ := output.Content["text"].(string)
	isFactual := text != "" && !output.Muhasabah.IsSubjective

	fact := validate.Fact{
		Path:         "debate_output." + output.OutputID,
		IsFactual:    isFactual,
		IsSubjective: output.Muhasabah.IsSubjective,
		ClaimRefs:    output.Muhasabah.SupportedClaimIDs,
		CalcRefs:     output.Muhasabah.SupportedCalcIDs,
	}
	return validate.NoFreeFacts([]validate.Fact{fact})
}
