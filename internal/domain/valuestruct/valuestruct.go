// Package valuestruct implements the typed value containers a Claim may
// carry: monetary, percentage, count, date, range, and text. Every variant
// serializes to and parses back from JSON without loss (spec.md §8 round-trip
// law: parse_value_struct(serialize(v)) == v).
package valuestruct

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the closed set of ValueStruct variants.
type Kind string

const (
	KindMonetary   Kind = "MONETARY"
	KindPercentage Kind = "PERCENTAGE"
	KindCount      Kind = "COUNT"
	KindDate       Kind = "DATE"
	KindRange      Kind = "RANGE"
	KindText       Kind = "TEXT"
)

// TimeWindow describes the period a value is scoped to, e.g. "Q3-2025" or
// "TRAILING_12M". It is a free-form label compared by case-sensitive string
// equality for Shudhudh reconciliation (spec.md §4.2 step 5).
type TimeWindow struct {
	Label string `json:"label,omitempty"`
}

// Value is the tagged union. Exactly the fields relevant to Kind are
// populated; callers should not read fields belonging to another Kind.
type Value struct {
	Kind Kind `json:"kind"`

	// MONETARY / PERCENTAGE / COUNT / RANGE
	Amount decimal.Decimal `json:"amount,omitempty"`
	Low    decimal.Decimal `json:"low,omitempty"`
	High   decimal.Decimal `json:"high,omitempty"`

	// MONETARY
	Currency string `json:"currency,omitempty"`

	// PERCENTAGE
	AllowOverflow bool `json:"allow_overflow,omitempty"`

	// COUNT
	Unit string `json:"unit,omitempty"`

	// DATE
	Date time.Time `json:"date,omitempty"`

	// TEXT
	Text string `json:"text,omitempty"`

	TimeWindow *TimeWindow `json:"time_window,omitempty"`
	AsOf       *time.Time  `json:"as_of,omitempty"`
}

const percentageUpperBound = "1.0000001"

// Validate enforces the per-kind invariants described in spec.md §8 boundary
// behaviors (percentage overflow) and §3 (monetary requires currency).
func (v Value) Validate() error {
	switch v.Kind {
	case KindMonetary:
		if v.Currency == "" {
			return fmt.Errorf("valuestruct: MONETARY requires currency")
		}
	case KindPercentage:
		if !v.AllowOverflow {
			bound, _ := decimal.NewFromString(percentageUpperBound)
			if v.Amount.GreaterThanOrEqual(bound) {
				return fmt.Errorf("valuestruct: percentage %s exceeds 1.0 without allow_overflow", v.Amount.String())
			}
		}
	case KindCount:
		if !v.Amount.Equal(v.Amount.Truncate(0)) {
			return fmt.Errorf("valuestruct: COUNT must be a whole number, got %s", v.Amount.String())
		}
	case KindRange:
		if v.Low.GreaterThan(v.High) {
			return fmt.Errorf("valuestruct: RANGE low %s exceeds high %s", v.Low.String(), v.High.String())
		}
	case KindDate:
		if v.Date.IsZero() {
			return fmt.Errorf("valuestruct: DATE requires a date")
		}
	case KindText:
		if v.Text == "" {
			return fmt.Errorf("valuestruct: TEXT requires non-empty text")
		}
	default:
		return fmt.Errorf("valuestruct: unknown kind %q", v.Kind)
	}
	return nil
}

// Serialize renders v as canonical-adjacent JSON bytes (ordinary JSON is
// sufficient here; only hash preimages go through canonjson).
func Serialize(v Value) ([]byte, error) {
	return json.Marshal(v)
}

// Parse reverses Serialize.
func Parse(data []byte) (Value, error) {
	var v Value
	if err := json.Unmarshal(data, &v); err != nil {
		return Value{}, err
	}
	return v, nil
}
