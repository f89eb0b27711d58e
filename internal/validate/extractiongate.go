package validate

import (
	"fmt"
	"sort"

	"github.com/albarami/idis/internal/domain/calc"
	"github.com/shopspring/decimal"
)

var (
	minExtractionConfidence = decimal.RequireFromString("0.95")
	minDhabtScore           = decimal.RequireFromString("0.90")
)

// ExtractionGateBlockedError lists every input that failed the gate
// (spec.md §4.3 step 1: "Any single block aborts the calc... listing all
// blocked inputs; no partial computation").
type ExtractionGateBlockedError struct {
	BlockedClaimIDs []string
	Reasons         map[string]string
}

func (e *ExtractionGateBlockedError) Error() string {
	return fmt.Sprintf("extraction-confidence gate blocked %d input(s)", len(e.BlockedClaimIDs))
}

// ExtractionConfidenceGate enforces spec.md §4.3 step 1: every input must
// have extraction_confidence >= 0.95 and dhabt_score >= 0.90, unless it is
// human-verified (is_human_verified, or verification_method in
// {HUMAN_VERIFIED, DUAL_VERIFIED}). Missing/invalid values are blocks.
func ExtractionConfidenceGate(inputs []calc.InputGradeInfo) error {
	blocked := map[string]string{}
	for _, in := range inputs {
		if in.IsHumanVerified || in.VerificationMethod == "HUMAN_VERIFIED" || in.VerificationMethod == "DUAL_VERIFIED" {
			continue
		}
		if in.ClaimID == "" {
			blocked["<missing_claim_id>"] = "missing claim_id"
			continue
		}
		if in.ExtractionConfidence.LessThan(minExtractionConfidence) {
			blocked[in.ClaimID] = fmt.Sprintf("extraction_confidence %s < 0.95", in.ExtractionConfidence.String())
			continue
		}
		if in.DhabtScore.LessThan(minDhabtScore) {
			blocked[in.ClaimID] = fmt.Sprintf("dhabt_score %s < 0.90", in.DhabtScore.String())
		}
	}
	if len(blocked) == 0 {
		return nil
	}
	ids := make([]string, 0, len(blocked))
	for id := range blocked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &ExtractionGateBlockedError{BlockedClaimIDs: ids, Reasons: blocked}
}
