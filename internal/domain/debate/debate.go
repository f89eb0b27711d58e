// Package debate defines the entities produced by the adversarial debate
// loop (spec.md §4.8): per-agent outputs each carrying a MuhasabahRecord, and
// the debate's own round-by-round history.
package debate

import "github.com/shopspring/decimal"

// Role is the closed set of debate agent roles.
type Role string

const (
	RoleAdvocate  Role = "ADVOCATE"
	RoleAdversary Role = "ADVERSARY"
	RoleArbiter   Role = "ARBITER"
)

// MuhasabahRecord is the self-accounting record every agent output must
// carry (spec.md §4.8).
type MuhasabahRecord struct {
	SupportedClaimIDs   []string
	SupportedCalcIDs    []string
	FalsifiabilityTests []string
	Uncertainties       []string
	Confidence          decimal.Decimal
	FailureModes        []string
	IsSubjective        bool
	Recommendation      *string
}

// AgentOutput is one agent's contribution to a debate round.
type AgentOutput struct {
	OutputID  string
	AgentID   string
	Role      Role
	Round     int
	Content   map[string]interface{}
	Muhasabah *MuhasabahRecord
}

// RoundResult is one completed round: the three role outputs plus whichever
// was rejected, if any.
type RoundResult struct {
	Round   int
	Outputs []AgentOutput
}

// Status is the closed set of terminal debate outcomes.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusRejected  Status = "REJECTED"
)

// Result is the full debate outcome over up to N rounds.
type Result struct {
	DealID        string
	TenantID      string
	Rounds        []RoundResult
	Status        Status
	RejectionCode string
	RejectedAgent string
}
