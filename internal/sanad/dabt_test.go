package sanad

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculateDabtScore_AllDimensionsFullYieldsMaxScoreAndNormalBand(t *testing.T) {
	score := CalculateDabtScore(DabtDimensions{
		TimestampPrecision: d("1"), FigurePrecision: d("1"),
		IdentifierPrecision: d("1"), MethodologyDisclosure: d("1"),
	})

	assert.True(t, score.Value.Equal(d("1")))
	assert.Equal(t, BandNormal, score.Band)
}

func TestCalculateDabtScore_ZeroDimensionsYieldsLowBand(t *testing.T) {
	score := CalculateDabtScore(DabtDimensions{})

	assert.True(t, score.Value.Equal(decimal.Zero))
	assert.Equal(t, BandLow, score.Band)
}

func TestCalculateDabtScore_BandBoundaryAtPointFive(t *testing.T) {
	atBoundary := CalculateDabtScore(DabtDimensions{
		TimestampPrecision: d("0.5"), FigurePrecision: d("0.5"),
		IdentifierPrecision: d("0.5"), MethodologyDisclosure: d("0.5"),
	})
	assert.Equal(t, BandNormal, atBoundary.Band)

	justBelow := CalculateDabtScore(DabtDimensions{
		TimestampPrecision: d("0.49"), FigurePrecision: d("0.49"),
		IdentifierPrecision: d("0.49"), MethodologyDisclosure: d("0.49"),
	})
	assert.Equal(t, BandLow, justBelow.Band)
}
