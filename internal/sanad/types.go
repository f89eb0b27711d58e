// Package sanad implements the deterministic, fail-closed Sanad Evidence
// Grader (spec.md §4.2): source-tier admissibility, Dabt precision scoring,
// Tawatur corroboration, I'lal hidden-defect detection, Shudhudh anomaly
// reconciliation, and conflict-of-interest evaluation, combined into a final
// grade with a fully-populated explanation.
package sanad

import (
	"time"

	"github.com/albarami/idis/internal/domain/claim"
	domainsanad "github.com/albarami/idis/internal/domain/sanad"
	"github.com/shopspring/decimal"
)

// SourceProfile is everything the grader needs about one evidence item,
// beyond what internal/domain/evidence.Evidence carries: its tier, COI
// disclosure, the numeric value it asserts (for Shudhudh reconciliation),
// and its independence cluster (for Tawatur).
type SourceProfile struct {
	EvidenceID            string
	Tier                  Tier
	IndependenceClusterID string
	COIDisclosed          *bool // nil = no COI relationship known
	COISelfServing        bool
	Value                 *decimal.Decimal
	Unit                  string
	TimeWindowLabel       string
	Timestamp             time.Time

	Dabt DabtDimensions
}

// DocumentVersion is the minimal shape of a document version needed for
// ILAL_VERSION_DRIFT detection.
type DocumentVersion struct {
	DocumentID string
	Version    int
	SHA256     string
	MetricName string
	Value      *decimal.Decimal
}

// ClaimContext is the subset of claim.Claim the grader consults.
type ClaimContext struct {
	ClaimID      string
	Materiality  claim.Materiality
	CitedDocID   string
	CitedVersion int
	MetricName   string
}

// GradeInputs bundles everything calculate_sanad_grade needs (grounded on
// original grader.calculate_sanad_grade's parameter list).
type GradeInputs struct {
	Sanad         domainsanad.Sanad
	Primary       *SourceProfile
	Corroborating []SourceProfile
	Claim         *ClaimContext
	Documents     []DocumentVersion
	KnownEvidence map[string]bool
}

// AllSources returns Primary followed by Corroborating, skipping a nil
// Primary; it is the list most component functions iterate over.
func (g GradeInputs) AllSources() []SourceProfile {
	var out []SourceProfile
	if g.Primary != nil {
		out = append(out, *g.Primary)
	}
	out = append(out, g.Corroborating...)
	return out
}
