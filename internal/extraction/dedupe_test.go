package extraction

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albarami/idis/internal/domain/claim"
)

func TestDeduplicate_KeepsHighestConfidence(t *testing.T) {
	candidates := []Candidate{
		{Class: claim.ClassFinancial, Text: "Revenue is $1M", ExtractionConfidence: decimal.RequireFromString("0.80")},
		{Class: claim.ClassFinancial, Text: "  revenue   IS $1M ", ExtractionConfidence: decimal.RequireFromString("0.97")},
	}

	out := Deduplicate(candidates)

	require.Len(t, out, 1)
	assert.True(t, out[0].ExtractionConfidence.Equal(decimal.RequireFromString("0.97")))
}

func TestDeduplicate_DistinctClassesSurvive(t *testing.T) {
	candidates := []Candidate{
		{Class: claim.ClassFinancial, Text: "same text"},
		{Class: claim.ClassTraction, Text: "same text"},
	}

	out := Deduplicate(candidates)

	assert.Len(t, out, 2)
}
