// Package dashboard implements truth-dashboard aggregation (spec.md §4.8):
// JSONPath expressions evaluated over a deal's claim ValueStructs, so the
// dashboard UI can ask for e.g. every claim's $.amount or $.currency without
// a bespoke Go accessor per ValueStruct field.
package dashboard

import (
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/jsonpath"

	"github.com/albarami/idis/internal/domain/claim"
)

// Match is one claim whose Value matched a JSONPath expression.
type Match struct {
	ClaimID string      `json:"claim_id"`
	Result  interface{} `json:"result"`
}

// QueryClaimValues evaluates expression against every claim's Value,
// skipping claims with no Value and claims whose Value shape doesn't match
// the path (e.g. $.currency against a COUNT value). expression must be a
// valid JSONPath expression (github.com/PaesslerAG/jsonpath syntax, backed
// by gval); a malformed expression is rejected up front, by compiling it
// without evaluation, before any claim is evaluated.
func QueryClaimValues(claims []claim.Claim, expression string) ([]Match, error) {
	if err := validateExpression(expression); err != nil {
		return nil, fmt.Errorf("dashboard: invalid jsonpath expression %q: %w", expression, err)
	}

	matches := make([]Match, 0, len(claims))
	for _, c := range claims {
		if c.Value == nil {
			continue
		}
		doc, err := toJSONDoc(c.Value)
		if err != nil {
			return nil, fmt.Errorf("dashboard: decode claim %s value: %w", c.ClaimID, err)
		}
		result, err := jsonpath.Get(expression, doc)
		if err != nil {
			continue // well-formed path, no match on this claim's shape
		}
		matches = append(matches, Match{ClaimID: c.ClaimID, Result: result})
	}
	return matches, nil
}

// CountByResult evaluates expression against every claim and tallies how
// many claims produced each distinct result, the shape the truth-dashboard
// uses for e.g. "claims by currency" breakdowns.
func CountByResult(claims []claim.Claim, expression string) (map[string]int, error) {
	matches, err := QueryClaimValues(claims, expression)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(matches))
	for _, m := range matches {
		counts[fmt.Sprintf("%v", m.Result)]++
	}
	return counts, nil
}

// toJSONDoc round-trips v through JSON into a plain interface{} tree, the
// shape jsonpath.Get requires (it does not operate on typed Go structs).
func toJSONDoc(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// validateExpression compiles expression without evaluating it, so a
// malformed path is rejected once up front rather than being indistinguishable
// from a per-claim non-match.
func validateExpression(expression string) error {
	_, err := jsonpath.New(expression)
	return err
}
