// Package calc defines the DeterministicCalculation and CalcSanad entities
// produced by internal/calc's formula engine.
package calc

import (
	"sort"
	"time"

	"github.com/albarami/idis/internal/domain/claim"
	"github.com/albarami/idis/internal/platform/canonjson"
	"github.com/shopspring/decimal"
)

// Output is the canonical calculation output.
type Output struct {
	PrimaryValue decimal.Decimal `json:"primary_value"`
	Unit         string          `json:"unit"`
	Currency     string          `json:"currency,omitempty"`
}

// DeterministicCalculation references input claims, named Decimal inputs, a
// formula hash, and a code version, together producing a canonical Output
// and its reproducibility hash.
type DeterministicCalculation struct {
	CalcID              string
	TenantID            string
	DealID              string
	CalcType            string
	InputClaimIDs       []string
	Inputs              map[string]decimal.Decimal
	FormulaHash         string
	CodeVersion         string
	Output              Output
	ReproducibilityHash string
	CreatedAt           time.Time
}

// reproducibilityPreimage is the exact shape hashed per spec.md §3/§6: keys
// sorted, claim_ids sorted ascending, Decimal values rendered as strings.
type reproducibilityPreimage struct {
	TenantID    string                     `json:"tenant_id"`
	DealID      string                     `json:"deal_id"`
	CalcType    string                     `json:"calc_type"`
	FormulaHash string                     `json:"formula_hash"`
	CodeVersion string                     `json:"code_version"`
	Inputs      map[string]decimal.Decimal `json:"inputs"`
	ClaimIDs    []string                   `json:"claim_ids"`
	Output      Output                     `json:"output"`
}

// ComputeReproducibilityHash computes the SHA-256 over the canonical JSON of
// {tenant_id, deal_id, calc_type, formula_hash, code_version, inputs,
// output}, with claim_ids sorted ascending so the hash is independent of
// input ordering (spec.md §4.3 invariant).
func ComputeReproducibilityHash(c DeterministicCalculation) (string, error) {
	ids := append([]string(nil), c.InputClaimIDs...)
	sort.Strings(ids)

	preimage := reproducibilityPreimage{
		TenantID:    canonjson.LowercaseUUID(c.TenantID),
		DealID:      canonjson.LowercaseUUID(c.DealID),
		CalcType:    c.CalcType,
		FormulaHash: c.FormulaHash,
		CodeVersion: c.CodeVersion,
		Inputs:      c.Inputs,
		ClaimIDs:    ids,
		Output:      c.Output,
	}
	return canonjson.Hash(preimage)
}

// VerifyReproducibility recomputes the hash and reports whether it matches
// the stored ReproducibilityHash.
func VerifyReproducibility(c DeterministicCalculation) (bool, error) {
	h, err := ComputeReproducibilityHash(c)
	if err != nil {
		return false, err
	}
	return h == c.ReproducibilityHash, nil
}

// InputGradeInfo describes the evidentiary standing of one named calc input,
// used both by the extraction-confidence gate and by CalcSanad derivation.
type InputGradeInfo struct {
	ClaimID              string
	Grade                claim.Grade
	IsMaterial           bool
	ExtractionConfidence decimal.Decimal
	DhabtScore           decimal.Decimal
	IsHumanVerified      bool
	VerificationMethod   string
}

// CalcSanad carries the derived grade for a DeterministicCalculation.
type CalcSanad struct {
	CalcSanadID           string
	TenantID              string
	CalcID                string
	CalcGrade             claim.Grade
	InputMinGrade         claim.Grade
	MaterialInputClaimIDs []string
	CreatedAt             time.Time
}

// DeriveCalcSanad implements spec.md §4.3 step 5 and the retained fallback
// from the Open Question in §9: calc_grade is the minimum grade among
// material inputs; when no input is material, it falls back to the minimum
// grade among all inputs. Any FATAL-defect-bearing material input (signalled
// by the caller passing claim.GradeD as that input's grade after grading)
// forces D through the ordinary min-of-grades computation.
func DeriveCalcSanad(inputs []InputGradeInfo) (calcGrade claim.Grade, inputMinGrade claim.Grade, materialIDs []string) {
	if len(inputs) == 0 {
		return claim.GradeA, claim.GradeA, nil
	}

	inputMinGrade = claim.GradeA
	for _, in := range inputs {
		inputMinGrade = claim.Worse(inputMinGrade, in.Grade)
	}

	var materialGrade claim.Grade
	haveMaterial := false
	for _, in := range inputs {
		if !in.IsMaterial {
			continue
		}
		materialIDs = append(materialIDs, in.ClaimID)
		if !haveMaterial {
			materialGrade = in.Grade
			haveMaterial = true
		} else {
			materialGrade = claim.Worse(materialGrade, in.Grade)
		}
	}
	sort.Strings(materialIDs)

	if haveMaterial {
		return materialGrade, inputMinGrade, materialIDs
	}
	return inputMinGrade, inputMinGrade, materialIDs
}
