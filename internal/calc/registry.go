// Package calc implements the deterministic Calc Engine (spec.md §4.3):
// a formula registry mapping calc_type to a pure Decimal function, and an
// engine that enforces the extraction-confidence gate before invoking it.
package calc

import (
	"fmt"
	"sort"
	"sync"

	"github.com/albarami/idis/internal/platform/canonjson"
	"github.com/shopspring/decimal"
)

// FormulaFn is a pure function over named Decimal inputs. It must never
// read process state, the clock, or any RNG — every byte of its output is
// determined by merged. Fail-closed: unrecognized inputs are ignored, not
// silently zeroed.
type FormulaFn func(inputs map[string]decimal.Decimal) (decimal.Decimal, error)

// Spec is one formula's registration: its required/optional inputs, output
// precision, and a hash over the specification shape (not the function body
// — body identity is instead captured by the deployed code_version).
type Spec struct {
	CalcType        string
	Fn              FormulaFn
	RequiredInputs  []string
	OptionalInputs  map[string]decimal.Decimal
	OutputPrecision int32
	FormulaHash     string
}

type specPreimage struct {
	CalcType        string                     `json:"calc_type"`
	RequiredInputs  []string                   `json:"required_inputs"`
	OptionalInputs  map[string]decimal.Decimal `json:"optional_inputs"`
	OutputPrecision int32                      `json:"output_precision"`
}

func computeFormulaHash(calcType string, required []string, optional map[string]decimal.Decimal, precision int32) string {
	sortedRequired := append([]string(nil), required...)
	sort.Strings(sortedRequired)
	h, err := canonjson.Hash(specPreimage{
		CalcType:        calcType,
		RequiredInputs:  sortedRequired,
		OptionalInputs:  optional,
		OutputPrecision: precision,
	})
	if err != nil {
		// Only unmarshalable specs (a programmer error at registration
		// time, never user input) reach here; fail loud rather than
		// register a formula with a wrong hash.
		panic(fmt.Sprintf("calc: failed to hash formula spec for %s: %v", calcType, err))
	}
	return h
}

// Registry maps calc_type to its Spec.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]Spec
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// Register adds spec, computing its formula_hash. Calling code passes the
// required/optional inputs and precision; FormulaHash is always recomputed
// here, never trusted from the caller, so a hash can't be registered out of
// sync with the shape it describes.
func (r *Registry) Register(calcType string, fn FormulaFn, required []string, optional map[string]decimal.Decimal, precision int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[calcType] = Spec{
		CalcType:        calcType,
		Fn:              fn,
		RequiredInputs:  required,
		OptionalInputs:  optional,
		OutputPrecision: precision,
		FormulaHash:     computeFormulaHash(calcType, required, optional, precision),
	}
}

// Get returns the Spec for calcType, if registered.
func (r *Registry) Get(calcType string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[calcType]
	return s, ok
}

// NewCoreRegistry builds a Registry with the deal-diligence formulas
// exercised throughout the platform (spec.md §4.3, §9 scenario 4 names
// RUNWAY and GROSS_MARGIN explicitly; the rest fill out the calc_type
// catalogue a diligence tool needs).
func NewCoreRegistry() *Registry {
	r := NewRegistry()

	r.Register("RUNWAY", func(in map[string]decimal.Decimal) (decimal.Decimal, error) {
		burn := in["monthly_burn_rate"]
		if burn.IsZero() {
			return decimal.Decimal{}, fmt.Errorf("calc: monthly_burn_rate must be non-zero")
		}
		return in["cash_balance"].Div(burn), nil
	}, []string{"cash_balance", "monthly_burn_rate"}, nil, 4)

	r.Register("GROSS_MARGIN", func(in map[string]decimal.Decimal) (decimal.Decimal, error) {
		revenue := in["revenue"]
		if revenue.IsZero() {
			return decimal.Decimal{}, fmt.Errorf("calc: revenue must be non-zero")
		}
		return revenue.Sub(in["cogs"]).Div(revenue), nil
	}, []string{"revenue", "cogs"}, nil, 4)

	r.Register("BURN_MULTIPLE", func(in map[string]decimal.Decimal) (decimal.Decimal, error) {
		netNewARR := in["net_new_arr"]
		if netNewARR.IsZero() {
			return decimal.Decimal{}, fmt.Errorf("calc: net_new_arr must be non-zero")
		}
		return in["net_cash_burn"].Div(netNewARR), nil
	}, []string{"net_cash_burn", "net_new_arr"}, nil, 4)

	r.Register("CAC_PAYBACK_MONTHS", func(in map[string]decimal.Decimal) (decimal.Decimal, error) {
		arpaMargin := in["arpa_monthly"].Mul(in["gross_margin_pct"])
		if arpaMargin.IsZero() {
			return decimal.Decimal{}, fmt.Errorf("calc: arpa_monthly * gross_margin_pct must be non-zero")
		}
		return in["cac"].Div(arpaMargin), nil
	}, []string{"cac", "arpa_monthly", "gross_margin_pct"}, nil, 4)

	r.Register("NET_DOLLAR_RETENTION", func(in map[string]decimal.Decimal) (decimal.Decimal, error) {
		start := in["starting_arr"]
		if start.IsZero() {
			return decimal.Decimal{}, fmt.Errorf("calc: starting_arr must be non-zero")
		}
		numerator := start.Add(in["expansion_arr"]).Sub(in["contraction_arr"]).Sub(in["churned_arr"])
		return numerator.Div(start), nil
	}, []string{"starting_arr", "expansion_arr", "contraction_arr", "churned_arr"}, nil, 4)

	r.Register("RULE_OF_40", func(in map[string]decimal.Decimal) (decimal.Decimal, error) {
		return in["revenue_growth_pct"].Add(in["fcf_margin_pct"]), nil
	}, []string{"revenue_growth_pct", "fcf_margin_pct"}, nil, 4)

	return r
}
