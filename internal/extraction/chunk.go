// Package extraction implements the claim extraction pipeline (spec.md §2
// layer 7: "chunk → extract → dedupe → persist"). Concrete document parsers
// are out of scope (spec.md §1); this package consumes the already-parsed
// per-document JSON span export those parsers would produce, and the LLM
// call that turns chunk text into claim candidates is injected rather than
// hard-wired to a vendor.
package extraction

import (
	"strings"

	"github.com/albarami/idis/internal/domain/document"
)

// maxSpansPerChunk bounds how many spans are batched into one extractor
// call, keeping each LLM call's input within a predictable size.
const maxSpansPerChunk = 8

// Chunk is a contiguous run of spans from the same document, batched into
// one extractor call.
type Chunk struct {
	TenantID   string
	DocumentID string
	SpanIDs    []string
	Text       string
}

// ChunkSpans groups spans into chunks of at most maxSpansPerChunk, never
// spanning two documents. Spans are assumed already ordered by locator
// (page/line, sheet/cell, etc.) by the caller.
func ChunkSpans(spans []document.Span) []Chunk {
	var chunks []Chunk
	var cur *Chunk
	var texts []string

	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.Join(texts, "\n")
		chunks = append(chunks, *cur)
		cur = nil
		texts = nil
	}

	for _, s := range spans {
		if cur == nil || cur.DocumentID != s.DocumentID || len(cur.SpanIDs) >= maxSpansPerChunk {
			flush()
			cur = &Chunk{TenantID: s.TenantID, DocumentID: s.DocumentID}
		}
		cur.SpanIDs = append(cur.SpanIDs, s.SpanID)
		texts = append(texts, s.TextExcerpt)
	}
	flush()
	return chunks
}
