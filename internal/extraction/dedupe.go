package extraction

import "strings"

// Deduplicate collapses candidates that describe the same fact twice
// (same class, same normalized text) within one chunking pass, keeping the
// highest-confidence candidate of each group. Extraction is chunk-local, so
// duplicates arise from overlapping span windows rather than cross-document
// repetition; this pass is therefore scoped to one Chunk's output, called
// once per chunk by the pipeline before claims cross into storage.
func Deduplicate(candidates []Candidate) []Candidate {
	type key struct {
		class string
		text  string
	}
	best := map[key]Candidate{}
	var order []key

	for _, c := range candidates {
		k := key{class: string(c.Class), text: normalizeText(c.Text)}
		existing, ok := best[k]
		if !ok {
			best[k] = c
			order = append(order, k)
			continue
		}
		if c.ExtractionConfidence.GreaterThan(existing.ExtractionConfidence) {
			best[k] = c
		}
	}

	out := make([]Candidate, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
