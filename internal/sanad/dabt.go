package sanad

import "github.com/shopspring/decimal"

// DabtDimensions are the four independent precision dimensions Dabt weighs
// (spec.md §4.2 step 2): timestamp precision, figure precision, identifier
// precision, methodology disclosure. Each is a score in [0, 1]; the zero
// value (all dimensions 0) is the fail-closed default for a Sanad that
// discloses none of them.
type DabtDimensions struct {
	TimestampPrecision    decimal.Decimal
	FigurePrecision       decimal.Decimal
	IdentifierPrecision   decimal.Decimal
	MethodologyDisclosure decimal.Decimal
}

// dabtWeight assigns equal weight to each dimension; the four weights sum
// to 1 so the combined score stays in [0, 1].
var dabtWeight = decimal.RequireFromString("0.25")

var dabtLowBand = decimal.RequireFromString("0.50")

// Band is the Dabt quality band a score falls into.
type Band string

const (
	BandLow    Band = "LOW"
	BandNormal Band = "NORMAL"
)

// Score is the computed Dabt precision score plus its quality band.
type Score struct {
	Value decimal.Decimal
	Band  Band
}

// CalculateDabtScore implements spec.md §4.2 step 2: a weighted score over
// the four precision dimensions, banded at 0.50 (below caps the grade at B).
func CalculateDabtScore(d DabtDimensions) Score {
	sum := d.TimestampPrecision.Add(d.FigurePrecision).
		Add(d.IdentifierPrecision).Add(d.MethodologyDisclosure)
	score := sum.Mul(dabtWeight)

	band := BandNormal
	if score.LessThan(dabtLowBand) {
		band = BandLow
	}
	return Score{Value: score, Band: band}
}
