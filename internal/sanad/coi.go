package sanad

import (
	"github.com/albarami/idis/internal/domain/claim"
	"github.com/albarami/idis/internal/domain/defect"
)

// COIEvaluation is the conflict-of-interest verdict for one source.
type COIEvaluation struct {
	EvidenceID  string
	HasCOI      bool
	Disclosed   bool
	SelfServing bool
}

// EvaluateAllCOI implements spec.md §4.2 step 6: evaluate each source for a
// conflict of interest.
func EvaluateAllCOI(sources []SourceProfile) []COIEvaluation {
	out := make([]COIEvaluation, 0, len(sources))
	for _, s := range sources {
		eval := COIEvaluation{EvidenceID: s.EvidenceID}
		if s.COIDisclosed != nil {
			eval.HasCOI = true
			eval.Disclosed = *s.COIDisclosed
			eval.SelfServing = s.COISelfServing
		}
		out = append(out, eval)
	}
	return out
}

// CollectCOIDefects returns a MAJOR defect for every undisclosed COI.
// Disclosed self-serving sources are handled via GradeCap, not a defect —
// disclosure is the mitigating factor the methodology rewards.
func CollectCOIDefects(evals []COIEvaluation) []IlalDefect {
	var out []IlalDefect
	for _, e := range evals {
		if e.HasCOI && !e.Disclosed {
			out = append(out, IlalDefect{
				Type: defect.TypeConcealment, Severity: defect.SeverityMajor,
				Description: "undisclosed conflict of interest on source " + e.EvidenceID,
				Cure:        defect.CureHumanArbitration,
			})
		}
	}
	return out
}

// COIGradeCap implements the disclosed-self-serving-source cap: grade at
// most C. Returns "" when no cap applies.
func COIGradeCap(evals []COIEvaluation) claim.Grade {
	for _, e := range evals {
		if e.HasCOI && e.Disclosed && e.SelfServing {
			return claim.GradeC
		}
	}
	return ""
}
