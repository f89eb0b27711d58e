package extraction

import (
	"github.com/shopspring/decimal"

	"github.com/albarami/idis/internal/domain/claim"
	"github.com/albarami/idis/internal/domain/valuestruct"
)

// conflictTolerance bounds how far two same-class values may differ before
// they are treated as restating the same fact rather than contradicting it.
var conflictTolerance = decimal.RequireFromString("0.01")

// DetectConflicts compares every pair of claims sharing a claim_class and a
// ValueStruct Kind; a pair whose amounts disagree by more than
// conflictTolerance (relative to the larger magnitude) is a conflict. It
// returns the ClaimIDs of every claim involved in at least one conflict, for
// the caller to mark claim_verdict=CONTRADICTED.
func DetectConflicts(claims []claim.Claim) []string {
	flagged := map[string]bool{}
	for i := 0; i < len(claims); i++ {
		a := claims[i]
		if a.Value == nil {
			continue
		}
		for j := i + 1; j < len(claims); j++ {
			b := claims[j]
			if b.Value == nil || a.ClaimClass != b.ClaimClass || a.Value.Kind != b.Value.Kind {
				continue
			}
			if conflicts(*a.Value, *b.Value) {
				flagged[a.ClaimID] = true
				flagged[b.ClaimID] = true
			}
		}
	}
	ids := make([]string, 0, len(flagged))
	for id := range flagged {
		ids = append(ids, id)
	}
	return ids
}

func conflicts(a, b valuestruct.Value) bool {
	switch a.Kind {
	case valuestruct.KindMonetary:
		if a.Currency != b.Currency {
			return false
		}
		return amountsDiffer(a.Amount, b.Amount)
	case valuestruct.KindPercentage, valuestruct.KindCount:
		return amountsDiffer(a.Amount, b.Amount)
	case valuestruct.KindText:
		return a.Text != b.Text
	default:
		return false
	}
}

func amountsDiffer(a, b decimal.Decimal) bool {
	if a.IsZero() && b.IsZero() {
		return false
	}
	diff := a.Sub(b).Abs()
	denom := decimal.Max(a.Abs(), b.Abs())
	if denom.IsZero() {
		return false
	}
	return diff.Div(denom).GreaterThan(conflictTolerance)
}
