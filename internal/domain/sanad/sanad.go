// Package sanad defines the TransmissionNode and Sanad entities: the rooted
// DAG of transmission steps (extraction, calculation, human verification)
// supporting a claim, and the computed grade/corroboration attributes
// derived from it by internal/sanad's grader.
package sanad

import (
	"time"

	"github.com/albarami/idis/internal/domain/claim"
)

// NodeKind is the closed set of transmission step kinds.
type NodeKind string

const (
	NodeKindExtraction        NodeKind = "EXTRACTION"
	NodeKindCalculation       NodeKind = "CALCULATION"
	NodeKindHumanVerification NodeKind = "HUMAN_VERIFICATION"
)

// TransmissionNode is one step of the evidence chain.
type TransmissionNode struct {
	NodeID           string
	TenantID         string
	SanadID          string
	Kind             NodeKind
	Timestamp        time.Time
	UpstreamOriginID string
	InputRefs        []string
	OutputRefs       []string
}

// CorroborationLevel is the closed set of Tawatur corroboration statuses.
type CorroborationLevel string

const (
	CorroborationNone      CorroborationLevel = "NONE"
	CorroborationAhad1     CorroborationLevel = "AHAD_1"
	CorroborationAhad2     CorroborationLevel = "AHAD_2"
	CorroborationMutawatir CorroborationLevel = "MUTAWATIR"
)

// Sanad is the rooted DAG of TransmissionNodes supporting a claim, plus the
// computed attributes produced by the grader.
type Sanad struct {
	SanadID  string
	TenantID string
	ClaimID  string
	Nodes    []TransmissionNode
	// Edges stores (parent_id, child_id) adjacency pairs rather than
	// pointer-linked nodes, per spec.md §9 "Cyclic relationships".
	Edges      []Edge
	RootNodeID string

	Grade                 claim.Grade
	CorroborationLevel    CorroborationLevel
	IndependentChainCount int
	GradeRationale        GradeExplanation

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Edge is a directed parent→child adjacency pair in the transmission DAG.
type Edge struct {
	ParentID string
	ChildID  string
}

// GradeExplanation is the fully-populated explanation of how a grade was
// reached (spec.md §4.2 step 7).
type GradeExplanation struct {
	BaseGrade       claim.Grade        `json:"base_grade"`
	SourceTier      string             `json:"source_tier"`
	TierWeight      string             `json:"tier_weight"`
	DabtScore       string             `json:"dabt_score"`
	DabtBand        string             `json:"dabt_band"`
	TawaturStatus   CorroborationLevel `json:"tawatur_status"`
	DefectSummaries []DefectSummary    `json:"defect_summaries"`
	Caps            []string           `json:"caps"`
	Upgrades        []string           `json:"upgrades"`
	Downgrades      []string           `json:"downgrades"`
	FinalGrade      claim.Grade        `json:"final_grade"`
	Summary         string             `json:"summary"`
}

// DefectSummary is a compact, sorted summary of one defect for the
// explanation payload.
type DefectSummary struct {
	DefectType string `json:"defect_type"`
	Severity   string `json:"severity"`
}

// ByNodeID sorts TransmissionNodes for deterministic iteration (spec.md
// §4.2 "Determinism": stable iteration of chain nodes by node_id).
type ByNodeID []TransmissionNode

func (b ByNodeID) Len() int           { return len(b) }
func (b ByNodeID) Less(i, j int) bool { return b[i].NodeID < b[j].NodeID }
func (b ByNodeID) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }
