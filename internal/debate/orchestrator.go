package debate

import (
	"context"
	"fmt"

	"github.com/albarami/idis/internal/audit"
	domainaudit "github.com/albarami/idis/internal/domain/audit"
	domaindebate "github.com/albarami/idis/internal/domain/debate"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
)

// AgentFn produces one agent's output for a round, given the prior round's
// outputs (empty on round 1). Implementations call out to an LLM or a
// scripted test double; the orchestrator only enforces ordering and the
// Muḥāsabah gate.
type AgentFn func(ctx context.Context, round int, priorRound []domaindebate.AgentOutput) (domaindebate.AgentOutput, error)

// Orchestrator drives the advocate/adversary/arbiter debate loop (spec.md
// §4.8) for up to MaxRounds rounds, gating every output before it becomes
// visible to the next agent.
type Orchestrator struct {
	advocate  AgentFn
	adversary AgentFn
	arbiter   AgentFn
	auditor   *audit.Pipeline
	maxRounds int
}

// New builds an Orchestrator. maxRounds must be >= 1.
func New(advocate, adversary, arbiter AgentFn, auditor *audit.Pipeline, maxRounds int) *Orchestrator {
	return &Orchestrator{advocate: advocate, adversary: adversary, arbiter: arbiter, auditor: auditor, maxRounds: maxRounds}
}

// Run executes the debate loop against dealID/tenantID. A round's outputs
// are, in order, advocate then adversary then arbiter; each is gated before
// the next agent runs so a rejected output never reaches a downstream agent.
// Rejection halts the debate deterministically with the gate's typed error;
// the partial Result up to and including the rejected round is returned
// alongside it for audit/debugging.
func (o *Orchestrator) Run(ctx context.Context, tenantID, dealID string) (domaindebate.Result, error) {
	result := domaindebate.Result{TenantID: tenantID, DealID: dealID, Status: domaindebate.StatusCompleted}

	var priorRound []domaindebate.AgentOutput
	for round := 1; round <= o.maxRounds; round++ {
		roundResult, err := o.runRound(ctx, round, priorRound)
		result.Rounds = append(result.Rounds, roundResult)
		if err != nil {
			result.Status = domaindebate.StatusRejected
			if appErr, ok := apperr.As(err); ok {
				if reason, ok := appErr.Details["reason_code"].(string); ok {
					result.RejectionCode = reason
				}
			}
			if len(roundResult.Outputs) > 0 {
				result.RejectedAgent = roundResult.Outputs[len(roundResult.Outputs)-1].AgentID
			}
			_ = o.emitRejectionAudit(ctx, tenantID, dealID, round, err)
			return result, err
		}
		priorRound = roundResult.Outputs
	}
	return result, nil
}

func (o *Orchestrator) runRound(ctx context.Context, round int, priorRound []domaindebate.AgentOutput) (domaindebate.RoundResult, error) {
	roundResult := domaindebate.RoundResult{Round: round}

	for _, agent := range []struct {
		role Role
		fn   AgentFn
	}{
		{domaindebate.RoleAdvocate, o.advocate},
		{domaindebate.RoleAdversary, o.adversary},
		{domaindebate.RoleArbiter, o.arbiter},
	} {
		output, err := agent.fn(ctx, round, priorRound)
		if err != nil {
			return roundResult, fmt.Errorf("agent %s round %d: %w", agent.role, round, err)
		}
		if output.OutputID == "" {
			output.OutputID = idgen.New()
		}
		output.Role = agent.role
		output.Round = round

		if err := EvaluateOutput(&output); err != nil {
			roundResult.Outputs = append(roundResult.Outputs, output)
			return roundResult, err
		}
		roundResult.Outputs = append(roundResult.Outputs, output)
	}
	return roundResult, nil
}

func (o *Orchestrator) emitRejectionAudit(ctx context.Context, tenantID, dealID string, round int, cause error) error {
	ev, err := audit.Build(audit.BuildParams{
		TenantID:     tenantID,
		Actor:        domainaudit.Actor{ActorType: domainaudit.ActorService, ActorID: "debate-orchestrator"},
		RequestID:    idgen.New(),
		Method:       "INTERNAL",
		Path:         fmt.Sprintf("debate/round/%d", round),
		StatusCode:   400,
		ResourceType: "DEAL",
		ResourceID:   dealID,
		EventType:    "debate.output.rejected",
		Severity:     domainaudit.SeverityHigh,
		Summary:      cause.Error(),
	})
	if err != nil {
		return err
	}
	return o.auditor.Emit(ctx, ev)
}

// Role re-exports domaindebate.Role so callers composing AgentFn literals
// need only import this package.
type Role = domaindebate.Role
