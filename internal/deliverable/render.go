package deliverable

import (
	"fmt"
	"strings"
)

// RenderText produces the canonical intermediate representation (spec.md
// §4.7: "ordered text blocks") both renderers build their output from. It
// is pure and deterministic: identical input always produces an identical
// string, with no wall-clock or locale dependence.
func RenderText(d Deliverable, includeAuditAppendix bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", d.Kind)
	fmt.Fprintf(&b, "Deal: %s (%s)\n", d.DealName, d.DealID)
	fmt.Fprintf(&b, "Generated: %s\n\n", d.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"))

	for _, section := range d.Sections {
		fmt.Fprintf(&b, "## %s\n", section.Title)
		for _, fact := range section.Facts {
			fmt.Fprintf(&b, "- %s", fact.Text)
			if refs := factRefSuffix(fact); refs != "" {
				fmt.Fprintf(&b, " %s", refs)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if includeAuditAppendix {
		b.WriteString("## Audit Appendix\n")
		for _, ref := range d.AuditAppendix() {
			fmt.Fprintf(&b, "- %s:%s\n", ref.RefType, ref.RefID)
		}
	}

	return b.String()
}

func factRefSuffix(f Fact) string {
	var refs []string
	for _, id := range f.ClaimRefs {
		refs = append(refs, "claim:"+id)
	}
	for _, id := range f.CalcRefs {
		refs = append(refs, "calc:"+id)
	}
	if len(refs) == 0 {
		return ""
	}
	return "[" + strings.Join(refs, ", ") + "]"
}
