package extraction

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/albarami/idis/internal/domain/claim"
	"github.com/albarami/idis/internal/domain/valuestruct"
)

func monetaryClaim(id string, amount string) claim.Claim {
	return claim.Claim{
		ClaimID:    id,
		ClaimClass: claim.ClassFinancial,
		Value: &valuestruct.Value{
			Kind:     valuestruct.KindMonetary,
			Amount:   decimal.RequireFromString(amount),
			Currency: "USD",
		},
	}
}

func TestDetectConflicts_FlagsDivergentAmounts(t *testing.T) {
	claims := []claim.Claim{
		monetaryClaim("c1", "1000000"),
		monetaryClaim("c2", "5000000"),
	}

	flagged := DetectConflicts(claims)

	assert.ElementsMatch(t, []string{"c1", "c2"}, flagged)
}

func TestDetectConflicts_ToleratesSmallDivergence(t *testing.T) {
	claims := []claim.Claim{
		monetaryClaim("c1", "1000000"),
		monetaryClaim("c2", "1000050"),
	}

	flagged := DetectConflicts(claims)

	assert.Empty(t, flagged)
}

func TestDetectConflicts_IgnoresDifferentCurrency(t *testing.T) {
	a := monetaryClaim("c1", "1000000")
	b := monetaryClaim("c2", "1000000")
	b.Value.Currency = "EUR"

	flagged := DetectConflicts([]claim.Claim{a, b})

	assert.Empty(t, flagged)
}

func TestDetectConflicts_SkipsClaimsWithoutValue(t *testing.T) {
	claims := []claim.Claim{
		{ClaimID: "c1", ClaimClass: claim.ClassFinancial},
		{ClaimID: "c2", ClaimClass: claim.ClassFinancial},
	}

	flagged := DetectConflicts(claims)

	assert.Empty(t, flagged)
}
