package calc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	domaincalc "github.com/albarami/idis/internal/domain/calc"
	"github.com/albarami/idis/internal/domain/claim"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
	"github.com/albarami/idis/internal/validate"
	"github.com/shopspring/decimal"
)

// CalcMissingInputError lists every required input absent from a Run call
// (spec.md §4.3 step 2: "never report only the first missing field").
type CalcMissingInputError struct {
	CalcType string
	Missing  []string
}

func (e *CalcMissingInputError) Error() string {
	return fmt.Sprintf("calc %s missing required input(s): %v", e.CalcType, e.Missing)
}

// CalcUnsupportedValueError reports an unregistered calc_type.
type CalcUnsupportedValueError struct {
	CalcType string
}

func (e *CalcUnsupportedValueError) Error() string {
	return fmt.Sprintf("unsupported calc_type %q", e.CalcType)
}

// RunRequest is everything Engine.Run needs to produce a
// DeterministicCalculation plus its CalcSanad.
type RunRequest struct {
	TenantID    string
	DealID      string
	CalcType    string
	CodeVersion string
	Inputs      []domaincalc.InputGradeInfo
	Values      map[string]decimal.Decimal
	Unit        string
	Currency    string
}

// RunResult bundles the computed calculation with its derived CalcSanad.
type RunResult struct {
	Calculation domaincalc.DeterministicCalculation
	Sanad       domaincalc.CalcSanad
}

// Engine runs registered formulas under the extraction-confidence gate and
// produces a reproducibility-hashed, graded calculation (spec.md §4.3).
//
// No calc_type here is grounded on a Python formula-registry module: none
// exists in the filtered original_source tree (only engine.py and its test
// survived distillation). RUNWAY and GROSS_MARGIN's semantics are grounded
// on spec.md §9 scenario 4 and tests/test_calc_reproducibility.py; the rest
// of registry.go's catalogue follows the same fn-over-Decimal shape.
type Engine struct {
	registry *Registry
}

// NewEngine constructs an Engine backed by registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Run implements spec.md §4.3's five steps in order: extraction-confidence
// gate, required-input validation, default-merge, pure computation and
// quantization, reproducibility-hash and CalcSanad derivation. Any failure
// aborts before the formula runs — there is no partial computation.
func (e *Engine) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	spec, ok := e.registry.Get(req.CalcType)
	if !ok {
		return RunResult{}, &CalcUnsupportedValueError{CalcType: req.CalcType}
	}

	if err := validate.ExtractionConfidenceGate(req.Inputs); err != nil {
		var gateErr *validate.ExtractionGateBlockedError
		if errors.As(err, &gateErr) {
			return RunResult{}, apperr.ExtractionGateBlocked(gateErr.BlockedClaimIDs)
		}
		return RunResult{}, err
	}

	merged := make(map[string]decimal.Decimal, len(req.Values)+len(spec.OptionalInputs))
	for k, v := range spec.OptionalInputs {
		merged[k] = v
	}
	for k, v := range req.Values {
		merged[k] = v
	}

	var missing []string
	for _, name := range spec.RequiredInputs {
		if _, ok := merged[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return RunResult{}, &CalcMissingInputError{CalcType: req.CalcType, Missing: missing}
	}

	rawOutput, err := spec.Fn(merged)
	if err != nil {
		return RunResult{}, apperr.Internal("calc formula evaluation failed", err)
	}
	quantized := rawOutput.Round(spec.OutputPrecision)

	claimIDs := make([]string, 0, len(req.Inputs))
	for _, in := range req.Inputs {
		claimIDs = append(claimIDs, in.ClaimID)
	}
	sort.Strings(claimIDs)

	calcRecord := domaincalc.DeterministicCalculation{
		CalcID:        idgen.New(),
		TenantID:      req.TenantID,
		DealID:        req.DealID,
		CalcType:      req.CalcType,
		InputClaimIDs: claimIDs,
		Inputs:        merged,
		FormulaHash:   spec.FormulaHash,
		CodeVersion:   req.CodeVersion,
		Output: domaincalc.Output{
			PrimaryValue: quantized,
			Unit:         req.Unit,
			Currency:     req.Currency,
		},
		CreatedAt: time.Now().UTC(),
	}

	hash, err := domaincalc.ComputeReproducibilityHash(calcRecord)
	if err != nil {
		return RunResult{}, apperr.Internal("failed to compute reproducibility hash", err)
	}
	calcRecord.ReproducibilityHash = hash

	calcGrade, inputMinGrade, materialIDs := domaincalc.DeriveCalcSanad(req.Inputs)
	calcSanad := domaincalc.CalcSanad{
		CalcSanadID:           idgen.New(),
		TenantID:              req.TenantID,
		CalcID:                calcRecord.CalcID,
		CalcGrade:             calcGrade,
		InputMinGrade:         inputMinGrade,
		MaterialInputClaimIDs: materialIDs,
		CreatedAt:             calcRecord.CreatedAt,
	}

	return RunResult{Calculation: calcRecord, Sanad: calcSanad}, nil
}

// VerifyReproducibility recomputes calc's reproducibility hash and returns
// apperr.CalcIntegrityError when it no longer matches the stored value
// (spec.md §4.3 step 6: a calculation whose hash diverges from a fresh
// recomputation under the same code_version must never be trusted silently).
func (e *Engine) VerifyReproducibility(calc domaincalc.DeterministicCalculation) error {
	ok, err := domaincalc.VerifyReproducibility(calc)
	if err != nil {
		return apperr.Internal("failed to verify reproducibility", err)
	}
	if !ok {
		return apperr.CalcIntegrityError(calc.CalcID)
	}
	return nil
}

// GradeOf reports the claim.Grade recorded for a material input, defaulting
// to claim.GradeD when unknown — used by callers that need a conservative
// grade for an input the CalcSanad derivation did not see.
func GradeOf(inputs []domaincalc.InputGradeInfo, claimID string) claim.Grade {
	for _, in := range inputs {
		if in.ClaimID == claimID {
			return in.Grade
		}
	}
	return claim.GradeD
}
