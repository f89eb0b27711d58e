package sanad

import (
	"fmt"

	"github.com/albarami/idis/internal/domain/defect"
	"github.com/shopspring/decimal"
)

var (
	roundingTolerance      = decimal.RequireFromString("0.01")
	contradictionThreshold = decimal.RequireFromString("0.05")
	unitRatioLow           = decimal.RequireFromString("999")
	unitRatioHigh          = decimal.RequireFromString("1001")
	unitRatioLowK          = decimal.RequireFromString("999000")
	unitRatioHighK         = decimal.RequireFromString("1001000")
)

// ReconciliationAttempt records one reconciliation heuristic's outcome, in
// the order they were tried (shudhudh.py::ReconciliationAttempt).
type ReconciliationAttempt struct {
	Kind        string
	Success     bool
	Explanation string
}

// ShudhudhResult is the outcome of anomaly detection for one claim's
// corroborating values.
type ShudhudhResult struct {
	HasAnomaly     bool
	Defect         *IlalDefect
	Attempts       []ReconciliationAttempt
	ConsensusValue *decimal.Decimal
}

// attemptRounding succeeds when every value is within roundingTolerance of
// the mean (shudhudh.py::_attempt_rounding_reconciliation).
func attemptRounding(values []decimal.Decimal) (ReconciliationAttempt, *decimal.Decimal) {
	if len(values) < 2 {
		return ReconciliationAttempt{Kind: "ROUNDING", Success: false, Explanation: "insufficient values"}, nil
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(values))))
	if mean.IsZero() {
		allZero := true
		for _, v := range values {
			if !v.IsZero() {
				allZero = false
				break
			}
		}
		if allZero {
			return ReconciliationAttempt{Kind: "ROUNDING", Success: true, Explanation: "all values are zero"}, &mean
		}
		return ReconciliationAttempt{Kind: "ROUNDING", Success: false, Explanation: "mean is zero but values differ"}, nil
	}

	maxDeviation := decimal.Zero
	for _, v := range values {
		dev := v.Sub(mean).Abs().Div(mean.Abs())
		if dev.GreaterThan(maxDeviation) {
			maxDeviation = dev
		}
	}
	if maxDeviation.LessThanOrEqual(roundingTolerance) {
		return ReconciliationAttempt{
			Kind: "ROUNDING", Success: true,
			Explanation: fmt.Sprintf("values within %s tolerance", roundingTolerance.String()),
		}, &mean
	}
	return ReconciliationAttempt{
		Kind: "ROUNDING", Success: false,
		Explanation: fmt.Sprintf("values differ by %s, exceeding tolerance", maxDeviation.String()),
	}, nil
}

// attemptUnitConversion succeeds when two values differ by ~1e3 or ~1e6
// and both carry explicit unit labels (shudhudh.py::_attempt_unit_reconciliation).
func attemptUnitConversion(sources []SourceProfile) (ReconciliationAttempt, *decimal.Decimal) {
	type labeled struct {
		value decimal.Decimal
		unit  string
	}
	var vals []labeled
	for _, s := range sources {
		if s.Value != nil && s.Unit != "" {
			vals = append(vals, labeled{*s.Value, s.Unit})
		}
	}
	if len(vals) < 2 {
		return ReconciliationAttempt{Kind: "UNIT_CONVERSION", Success: false, Explanation: "insufficient labeled values"}, nil
	}
	for i := 0; i < len(vals); i++ {
		for j := i + 1; j < len(vals); j++ {
			a, b := vals[i], vals[j]
			if a.value.IsZero() || b.value.IsZero() {
				continue
			}
			ratio := a.value.Div(b.value).Abs()
			if ratio.GreaterThanOrEqual(unitRatioLow) && ratio.LessThanOrEqual(unitRatioHigh) {
				reconciled := decimal.Max(a.value, b.value)
				return ReconciliationAttempt{
					Kind: "UNIT_CONVERSION", Success: true,
					Explanation: fmt.Sprintf("values differ by ~1000x with units %s/%s", a.unit, b.unit),
				}, &reconciled
			}
			if ratio.GreaterThanOrEqual(unitRatioLowK) && ratio.LessThanOrEqual(unitRatioHighK) {
				reconciled := decimal.Max(a.value, b.value)
				return ReconciliationAttempt{
					Kind: "UNIT_CONVERSION", Success: true,
					Explanation: fmt.Sprintf("values differ by ~1e6 with units %s/%s", a.unit, b.unit),
				}, &reconciled
			}
		}
	}
	return ReconciliationAttempt{Kind: "UNIT_CONVERSION", Success: false, Explanation: "no unit conversion pattern detected"}, nil
}

// attemptTimeWindow reports that different time-window labels explain the
// discrepancy (values aren't comparable, but this isn't flagged as an
// anomaly either — shudhudh.py::_attempt_time_window_reconciliation).
func attemptTimeWindow(sources []SourceProfile) ReconciliationAttempt {
	labels := map[string]bool{}
	for _, s := range sources {
		if s.TimeWindowLabel != "" {
			labels[s.TimeWindowLabel] = true
		}
	}
	if len(labels) == 0 {
		return ReconciliationAttempt{Kind: "TIME_WINDOW", Success: false, Explanation: "no time window labels found"}
	}
	if len(labels) > 1 {
		return ReconciliationAttempt{Kind: "TIME_WINDOW", Success: true, Explanation: "different time windows detected - not comparable"}
	}
	return ReconciliationAttempt{Kind: "TIME_WINDOW", Success: false, Explanation: "same time window - no reconciliation needed"}
}

// computeConsensus is the tier-weighted mean of every valued source
// (shudhudh.py::_compute_consensus).
func computeConsensus(sources []SourceProfile) *decimal.Decimal {
	weightedSum := decimal.Zero
	totalWeight := decimal.Zero
	var plain []decimal.Decimal
	for _, s := range sources {
		if s.Value == nil {
			continue
		}
		w := TierWeightOf(AssignTier(&s))
		weightedSum = weightedSum.Add(s.Value.Mul(w))
		totalWeight = totalWeight.Add(w)
		plain = append(plain, *s.Value)
	}
	if len(plain) == 0 {
		return nil
	}
	if totalWeight.IsZero() {
		sum := decimal.Zero
		for _, v := range plain {
			sum = sum.Add(v)
		}
		mean := sum.Div(decimal.NewFromInt(int64(len(plain))))
		return &mean
	}
	consensus := weightedSum.Div(totalWeight)
	return &consensus
}

func contradicts(value, consensus decimal.Decimal) bool {
	if consensus.IsZero() {
		return !value.IsZero()
	}
	deviation := value.Sub(consensus).Abs().Div(consensus.Abs())
	return deviation.GreaterThan(contradictionThreshold)
}

// DetectShudhudh implements spec.md §4.2 step 5: attempt reconciliation in
// order (rounding, unit conversion, time window) before flagging; only an
// unreconciled, SUPPORT_ONLY-tier contradiction against consensus raises
// SHUDHUDH_ANOMALY (shudhudh.py::detect_shudhudh).
func DetectShudhudh(sources []SourceProfile) ShudhudhResult {
	var values []decimal.Decimal
	for _, s := range sources {
		if s.Value != nil {
			values = append(values, *s.Value)
		}
	}
	if len(values) < 2 {
		return ShudhudhResult{HasAnomaly: false, ConsensusValue: firstValue(values)}
	}

	var attempts []ReconciliationAttempt

	roundingAttempt, roundingConsensus := attemptRounding(values)
	attempts = append(attempts, roundingAttempt)
	if roundingAttempt.Success {
		return ShudhudhResult{HasAnomaly: false, Attempts: attempts, ConsensusValue: roundingConsensus}
	}

	unitAttempt, unitConsensus := attemptUnitConversion(sources)
	attempts = append(attempts, unitAttempt)
	if unitAttempt.Success {
		return ShudhudhResult{
			HasAnomaly: false, Attempts: attempts, ConsensusValue: unitConsensus,
			Defect: &IlalDefect{
				Type: defect.TypeUnitMismatch, Severity: defect.SeverityMinor,
				Description: unitAttempt.Explanation,
			},
		}
	}

	timeAttempt := attemptTimeWindow(sources)
	attempts = append(attempts, timeAttempt)
	if timeAttempt.Success {
		return ShudhudhResult{
			HasAnomaly: false, Attempts: attempts,
			Defect: &IlalDefect{
				Type: defect.TypeTimeWindowMismatch, Severity: defect.SeverityMinor,
				Description: timeAttempt.Explanation,
			},
		}
	}

	consensus := computeConsensus(sources)
	if consensus == nil {
		return ShudhudhResult{HasAnomaly: false, Attempts: attempts}
	}

	for _, s := range sources {
		if s.Value == nil {
			continue
		}
		tier := AssignTier(&s)
		if TierUsageOf(tier) == UsageSupportOnly && contradicts(*s.Value, *consensus) {
			return ShudhudhResult{
				HasAnomaly: true, Attempts: attempts, ConsensusValue: consensus,
				Defect: &IlalDefect{
					Type: defect.TypeShudhudhAnomaly, Severity: defect.SeverityMajor,
					Description: fmt.Sprintf("lower-tier source (%s) contradicts consensus %s with value %s", tier, consensus.String(), s.Value.String()),
					Cure:        defect.CureHumanArbitration,
				},
			}
		}
	}

	return ShudhudhResult{HasAnomaly: false, Attempts: attempts, ConsensusValue: consensus}
}

func firstValue(values []decimal.Decimal) *decimal.Decimal {
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}
