package extraction

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/albarami/idis/internal/domain/claim"
)

// HeuristicExtractor is a deterministic Extractor stand-in: it splits a
// chunk's text into non-blank lines and turns each into one claim
// candidate, classifying and scoring by simple lexical cues. A concrete LLM
// vendor integration is out of scope (this package's doc comment: "the LLM
// call ... is injected rather than hard-wired to a vendor"); this gives the
// orchestrator wiring something real to call without binding to one.
type HeuristicExtractor struct{}

func NewHeuristicExtractor() *HeuristicExtractor { return &HeuristicExtractor{} }

var classKeywords = map[claim.Class][]string{
	claim.ClassFinancial:   {"revenue", "arr", "profit", "margin", "burn", "$"},
	claim.ClassTraction:    {"users", "customers", "growth", "retention"},
	claim.ClassMarketSize:  {"tam", "market size", "addressable"},
	claim.ClassCompetition: {"competitor", "competitive", "versus"},
	claim.ClassTeam:        {"founder", "ceo", "cto", "team"},
	claim.ClassLegalTerms:  {"clause", "agreement", "liability", "indemnif"},
	claim.ClassTechnical:   {"architecture", "latency", "infrastructure"},
}

// classOrder fixes the order classify tries classes in, so a line carrying
// cues of several classes always gets the same one. FINANCIAL, whose "$" cue
// is the most generic, is tried last.
var classOrder = []claim.Class{
	claim.ClassMarketSize, claim.ClassCompetition, claim.ClassTeam,
	claim.ClassLegalTerms, claim.ClassTechnical, claim.ClassTraction,
	claim.ClassFinancial,
}

func classify(text string) claim.Class {
	lower := strings.ToLower(text)
	for _, class := range classOrder {
		for _, kw := range classKeywords[class] {
			if strings.Contains(lower, kw) {
				return class
			}
		}
	}
	return claim.ClassOther
}

// subjectiveCues flags language that expresses opinion rather than fact,
// matching claim.HasEvidenceRequirement's factual/subjective split.
var subjectiveCues = []string{"believe", "expect", "think", "should", "likely", "plan to"}

func isSubjective(text string) bool {
	lower := strings.ToLower(text)
	for _, cue := range subjectiveCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

// ExtractClaims implements Extractor.
func (e *HeuristicExtractor) ExtractClaims(_ context.Context, chunk Chunk) ([]Candidate, error) {
	var out []Candidate
	for i, line := range strings.Split(chunk.Text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		spanID := ""
		if i < len(chunk.SpanIDs) {
			spanID = chunk.SpanIDs[i]
		} else if len(chunk.SpanIDs) > 0 {
			spanID = chunk.SpanIDs[len(chunk.SpanIDs)-1]
		}
		subjective := isSubjective(line)
		out = append(out, Candidate{
			Class:                classify(line),
			Text:                 line,
			PrimarySpanID:        spanID,
			ExtractionConfidence: decimal.RequireFromString("0.90"),
			DhabtScore:           decimal.RequireFromString("0.90"),
			IsFactual:            !subjective,
			IsSubjective:         subjective,
		})
	}
	return out, nil
}

var _ Extractor = (*HeuristicExtractor)(nil)
