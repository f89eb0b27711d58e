package sanad

import (
	"fmt"

	"github.com/albarami/idis/internal/domain/claim"
	"github.com/albarami/idis/internal/domain/defect"
	domainsanad "github.com/albarami/idis/internal/domain/sanad"
)

// GradeResult is the complete output of CalculateGrade: the final grade plus
// every component result, for persistence and for the fully-populated
// explanation spec.md §4.2 step 7 requires.
type GradeResult struct {
	Grade       claim.Grade
	Explanation domainsanad.GradeExplanation
	Tier        Tier
	Dabt        Score
	Tawatur     Result
	Shudhudh    *ShudhudhResult
	IlalDefects []IlalDefect
	COI         []COIEvaluation
	AllDefects  []IlalDefect
}

// CalculateGrade implements spec.md §4.2's full algorithm (grounded on
// original_source's services/sanad/grader.py::calculate_sanad_grade):
// tier → base grade, Dabt → cap, Tawatur → upgrade, I'lal → FATAL/MAJOR,
// Shudhudh → MAJOR, COI → cap/defect, combined deterministically.
func CalculateGrade(in GradeInputs) GradeResult {
	var upgrades, downgrades, caps []string

	tier := AssignTier(in.Primary)
	baseGrade := TierToBaseGrade(tier)

	if in.Claim != nil {
		if admissible, cap := CheckTierAdmissibility(tier, in.Claim.Materiality); !admissible {
			caps = append(caps, string(cap))
		}
	}

	dabtDims := DabtDimensions{}
	if in.Primary != nil {
		dabtDims = in.Primary.Dabt
	}
	dabt := CalculateDabtScore(dabtDims)
	if dabt.Band == BandLow {
		caps = append(caps, string(claim.GradeB))
	}

	sources := in.AllSources()
	tawatur := AssessTawatur(sources)

	ilalDefects := DetectAll(in)

	var shudhudh *ShudhudhResult
	if len(sources) >= 2 {
		result := DetectShudhudh(sources)
		shudhudh = &result
	}

	coiEvals := EvaluateAllCOI(sources)
	coiDefects := CollectCOIDefects(coiEvals)
	if cap := COIGradeCap(coiEvals); cap != "" {
		caps = append(caps, string(cap))
	}

	fatal, major, minor := collectDefects(ilalDefects, coiDefects, shudhudh)
	allDefects := append(append(append([]IlalDefect{}, fatal...), major...), minor...)

	var finalGrade claim.Grade
	var summary string

	if len(fatal) > 0 {
		finalGrade = claim.GradeD
		summary = fmt.Sprintf("grade D forced by %d fatal defect(s): %s", len(fatal), fatal[0].Type)
	} else {
		grade := baseGrade
		for _, d := range major {
			grade = downgradeOne(grade)
			downgrades = append(downgrades, fmt.Sprintf("MAJOR defect %s", d.Type))
		}
		if len(major) == 0 && tawatur.Status == domainsanad.CorroborationMutawatir {
			grade = upgradeOne(grade)
			upgrades = append(upgrades, "MUTAWATIR corroboration upgrade")
		}
		for _, capStr := range caps {
			cap := claim.Grade(capStr)
			if grade.Rank() > cap.Rank() {
				grade = cap
				downgrades = append(downgrades, fmt.Sprintf("grade cap applied: %s", cap))
			}
		}
		finalGrade = grade

		switch {
		case len(downgrades) > 0:
			summary = fmt.Sprintf("grade %s after %d adjustment(s)", finalGrade, len(downgrades))
		case len(upgrades) > 0:
			summary = fmt.Sprintf("grade %s with %d upgrade(s)", finalGrade, len(upgrades))
		default:
			summary = fmt.Sprintf("grade %s from base %s", finalGrade, baseGrade)
		}
	}

	explanation := domainsanad.GradeExplanation{
		BaseGrade:       baseGrade,
		SourceTier:      string(tier),
		TierWeight:      TierWeightOf(tier).String(),
		DabtScore:       dabt.Value.String(),
		DabtBand:        string(dabt.Band),
		TawaturStatus:   tawatur.Status,
		DefectSummaries: toDefectSummaries(allDefects),
		Caps:            caps,
		Upgrades:        upgrades,
		Downgrades:      downgrades,
		FinalGrade:      finalGrade,
		Summary:         summary,
	}

	return GradeResult{
		Grade:       finalGrade,
		Explanation: explanation,
		Tier:        tier,
		Dabt:        dabt,
		Tawatur:     tawatur,
		Shudhudh:    shudhudh,
		IlalDefects: ilalDefects,
		COI:         coiEvals,
		AllDefects:  allDefects,
	}
}

func collectDefects(ilal []IlalDefect, coi []IlalDefect, shudhudh *ShudhudhResult) (fatal, major, minor []IlalDefect) {
	bucket := func(d IlalDefect) {
		switch d.Severity {
		case defect.SeverityFatal:
			fatal = append(fatal, d)
		case defect.SeverityMajor:
			major = append(major, d)
		default:
			minor = append(minor, d)
		}
	}
	for _, d := range ilal {
		bucket(d)
	}
	for _, d := range coi {
		bucket(d)
	}
	if shudhudh != nil && shudhudh.Defect != nil {
		bucket(*shudhudh.Defect)
	}
	return fatal, major, minor
}

func toDefectSummaries(defects []IlalDefect) []domainsanad.DefectSummary {
	out := make([]domainsanad.DefectSummary, 0, len(defects))
	for _, d := range defects {
		out = append(out, domainsanad.DefectSummary{DefectType: string(d.Type), Severity: string(d.Severity)})
	}
	return out
}

func downgradeOne(g claim.Grade) claim.Grade {
	switch g {
	case claim.GradeA:
		return claim.GradeB
	case claim.GradeB:
		return claim.GradeC
	default:
		return claim.GradeD
	}
}

func upgradeOne(g claim.Grade) claim.Grade {
	switch g {
	case claim.GradeD:
		return claim.GradeC
	case claim.GradeC:
		return claim.GradeB
	default:
		return claim.GradeA
	}
}
