package extraction

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/albarami/idis/internal/domain/claim"
	"github.com/albarami/idis/internal/domain/valuestruct"
)

// Candidate is one claim candidate an Extractor produces from a Chunk,
// before dedup, conflict detection, and confidence-action assignment.
type Candidate struct {
	Class                claim.Class
	Text                 string
	Value                *valuestruct.Value
	PrimarySpanID        string
	ExtractionConfidence decimal.Decimal
	DhabtScore           decimal.Decimal
	IsFactual            bool
	IsSubjective         bool
}

// Extractor turns one chunk's text into zero or more claim candidates.
// Implementations call out to an LLM; the pipeline rate-limits every call
// but sets no deadline of its own, so a call is bounded in time only by the
// caller's ctx or by the Extractor implementation itself.
type Extractor interface {
	ExtractClaims(ctx context.Context, chunk Chunk) ([]Candidate, error)
}
