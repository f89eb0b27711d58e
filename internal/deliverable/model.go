// Package deliverable implements deliverable export with the No-Free-Facts
// gate and byte-deterministic PDF/DOCX rendering (spec.md §4.7).
package deliverable

import (
	"fmt"
	"time"

	"github.com/albarami/idis/internal/validate"
)

// RefType is the closed set of audit-appendix reference kinds.
type RefType string

const (
	RefClaim RefType = "CLAIM"
	RefCalc  RefType = "CALC"
)

// Fact is one sentence of a deliverable section, carrying the references
// that ground it.
type Fact struct {
	Text         string
	ClaimRefs    []string
	CalcRefs     []string
	IsFactual    bool
	IsSubjective bool
}

// Section is an ordered group of Facts under a title.
type Section struct {
	Title string
	Facts []Fact
}

// Deliverable is a full exportable document: ordered sections of ordered
// facts, plus the metadata an export needs.
type Deliverable struct {
	DeliverableID string
	TenantID      string
	DealID        string
	DealName      string
	Kind          string
	GeneratedAt   time.Time
	Sections      []Section
}

// ValidationFacts flattens every fact into validate.Fact, each carrying a
// stable path (spec.md §4.7: "aggregated list of offending paths").
func (d Deliverable) ValidationFacts() []validate.Fact {
	var out []validate.Fact
	for si, section := range d.Sections {
		for fi, fact := range section.Facts {
			out = append(out, validate.Fact{
				Path:         fmt.Sprintf("sections[%d:%s].facts[%d]", si, section.Title, fi),
				IsFactual:    fact.IsFactual,
				IsSubjective: fact.IsSubjective,
				ClaimRefs:    fact.ClaimRefs,
				CalcRefs:     fact.CalcRefs,
			})
		}
	}
	return out
}

// Record is the persisted metadata for one exported Deliverable (spec.md §3
// Lifecycle): distinct from the in-memory Deliverable assembled to render
// it, this is what a DELIVERABLES-class retention policy and legal hold
// actually govern, and what a hard delete removes.
type Record struct {
	DeliverableID string
	TenantID      string
	DealID        string
	Kind          string
	Format        string
	GeneratedAt   time.Time
	ContentBytes  []byte
	DeletedAt     *time.Time
}

// AppendixRef is one (ref_id, ref_type) pair listed in the audit appendix.
type AppendixRef struct {
	RefID   string
	RefType RefType
}

// AuditAppendix collects every distinct (ref_id, ref_type) referenced
// anywhere in the deliverable, in first-seen order (spec.md §4.7: "An audit
// appendix lists every (ref_id, ref_type) referenced anywhere").
func (d Deliverable) AuditAppendix() []AppendixRef {
	seen := map[AppendixRef]bool{}
	var out []AppendixRef
	for _, section := range d.Sections {
		for _, fact := range section.Facts {
			for _, id := range fact.ClaimRefs {
				ref := AppendixRef{RefID: id, RefType: RefClaim}
				if !seen[ref] {
					seen[ref] = true
					out = append(out, ref)
				}
			}
			for _, id := range fact.CalcRefs {
				ref := AppendixRef{RefID: id, RefType: RefCalc}
				if !seen[ref] {
					seen[ref] = true
					out = append(out, ref)
				}
			}
		}
	}
	return out
}
