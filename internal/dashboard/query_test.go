package dashboard

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albarami/idis/internal/domain/claim"
	"github.com/albarami/idis/internal/domain/valuestruct"
)

func claimWithValue(id string, v *valuestruct.Value) claim.Claim {
	return claim.Claim{ClaimID: id, Value: v}
}

func TestQueryClaimValues_SkipsClaimsWithNoValueOrNoMatch(t *testing.T) {
	claims := []claim.Claim{
		claimWithValue("claim-1", &valuestruct.Value{Kind: valuestruct.KindMonetary, Amount: decimal.NewFromInt(100), Currency: "USD"}),
		claimWithValue("claim-2", nil),
		claimWithValue("claim-3", &valuestruct.Value{Kind: valuestruct.KindCount, Amount: decimal.NewFromInt(5), Unit: "seats"}),
	}

	matches, err := QueryClaimValues(claims, "$.currency")

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "claim-1", matches[0].ClaimID)
	assert.Equal(t, "USD", matches[0].Result)
}

func TestQueryClaimValues_RejectsMalformedExpression(t *testing.T) {
	claims := []claim.Claim{
		claimWithValue("claim-1", &valuestruct.Value{Kind: valuestruct.KindMonetary, Amount: decimal.NewFromInt(100), Currency: "USD"}),
	}

	_, err := QueryClaimValues(claims, "$[")

	assert.Error(t, err)
}

func TestCountByResult_TalliesDistinctResults(t *testing.T) {
	claims := []claim.Claim{
		claimWithValue("claim-1", &valuestruct.Value{Kind: valuestruct.KindMonetary, Amount: decimal.NewFromInt(100), Currency: "USD"}),
		claimWithValue("claim-2", &valuestruct.Value{Kind: valuestruct.KindMonetary, Amount: decimal.NewFromInt(200), Currency: "USD"}),
		claimWithValue("claim-3", &valuestruct.Value{Kind: valuestruct.KindMonetary, Amount: decimal.NewFromInt(300), Currency: "EUR"}),
	}

	counts, err := CountByResult(claims, "$.currency")

	require.NoError(t, err)
	assert.Equal(t, 2, counts["USD"])
	assert.Equal(t, 1, counts["EUR"])
}
