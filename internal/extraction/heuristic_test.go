package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albarami/idis/internal/domain/claim"
)

func TestHeuristicExtractor_ExtractClaims_OneCandidatePerNonBlankLine(t *testing.T) {
	e := NewHeuristicExtractor()
	chunk := Chunk{
		Text:    "ARR grew to $2.4M\n\nWe believe the market will double\n",
		SpanIDs: []string{"span-1", "span-2"},
	}

	candidates, err := e.ExtractClaims(context.Background(), chunk)

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "ARR grew to $2.4M", candidates[0].Text)
	assert.Equal(t, "We believe the market will double", candidates[1].Text)
}

func TestHeuristicExtractor_ExtractClaims_ClassifiesByLexicalCues(t *testing.T) {
	e := NewHeuristicExtractor()
	chunk := Chunk{Text: "Our TAM is $10B", SpanIDs: []string{"span-1"}}

	candidates, err := e.ExtractClaims(context.Background(), chunk)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, claim.ClassMarketSize, candidates[0].Class)
}

func TestHeuristicExtractor_ExtractClaims_DefaultsToOtherWhenNoKeywordMatches(t *testing.T) {
	e := NewHeuristicExtractor()
	chunk := Chunk{Text: "The weather was nice that day", SpanIDs: []string{"span-1"}}

	candidates, err := e.ExtractClaims(context.Background(), chunk)

	require.NoError(t, err)
	assert.Equal(t, claim.ClassOther, candidates[0].Class)
}

func TestHeuristicExtractor_ExtractClaims_FlagsSubjectiveLanguage(t *testing.T) {
	e := NewHeuristicExtractor()
	chunk := Chunk{Text: "We expect to close the round by Q3", SpanIDs: []string{"span-1"}}

	candidates, err := e.ExtractClaims(context.Background(), chunk)

	require.NoError(t, err)
	assert.True(t, candidates[0].IsSubjective)
	assert.False(t, candidates[0].IsFactual)
}

func TestHeuristicExtractor_ExtractClaims_FactualLineIsNotSubjective(t *testing.T) {
	e := NewHeuristicExtractor()
	chunk := Chunk{Text: "Revenue was $500,000 last quarter", SpanIDs: []string{"span-1"}}

	candidates, err := e.ExtractClaims(context.Background(), chunk)

	require.NoError(t, err)
	assert.False(t, candidates[0].IsSubjective)
	assert.True(t, candidates[0].IsFactual)
}

func TestHeuristicExtractor_ExtractClaims_ReusesLastSpanIDWhenLinesExceedSpans(t *testing.T) {
	e := NewHeuristicExtractor()
	chunk := Chunk{Text: "line one\nline two\nline three", SpanIDs: []string{"span-1"}}

	candidates, err := e.ExtractClaims(context.Background(), chunk)

	require.NoError(t, err)
	require.Len(t, candidates, 3)
	for _, c := range candidates {
		assert.Equal(t, "span-1", c.PrimarySpanID)
	}
}

func TestHeuristicExtractor_ExtractClaims_EmptyTextYieldsNoCandidates(t *testing.T) {
	e := NewHeuristicExtractor()

	candidates, err := e.ExtractClaims(context.Background(), Chunk{Text: "\n\n  \n"})

	require.NoError(t, err)
	assert.Empty(t, candidates)
}
