package extraction

import (
	"context"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/albarami/idis/internal/audit"
	domainaudit "github.com/albarami/idis/internal/domain/audit"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
	"github.com/albarami/idis/internal/security"
)

// defaultConnectorTimeout bounds one connector script's run when the caller
// doesn't set Connector.Timeout.
const defaultConnectorTimeout = 5 * time.Second

// Connector is one sandboxed enrichment script, standing in for the
// 14-connector SDK catalogue (concrete SDKs are out of scope, spec.md §1).
// Every connector runs as JS inside a fresh goja VM for the ENRICHMENT run
// step, bounded by Timeout.
type Connector struct {
	Name       string
	Script     string
	EntryPoint string
	Timeout    time.Duration
}

// EnrichmentResult is one connector's output.
type EnrichmentResult struct {
	ConnectorName string
	Output        map[string]interface{}
	Logs          []string
}

// RunEnrichment executes connector against input and emits
// enrichment.started/enrichment.completed|enrichment.failed audit events.
// BYOK key state is checked first: a revoked key on Class2/Class3 data is
// denied before enrichment.started is ever built, so a denied call leaves
// no partial audit trail for work that never ran (spec.md §9 Open
// Question: BYOK gates ahead of the enrichment audit sequence).
func RunEnrichment(ctx context.Context, tenantID, dealID string, class security.DataClass, key security.KeyRecord, connector Connector, input map[string]interface{}, auditor *audit.Pipeline) (EnrichmentResult, error) {
	if err := security.CheckBYOK(class, key); err != nil {
		return EnrichmentResult{}, err
	}

	if err := emitEnrichmentEvent(ctx, auditor, tenantID, dealID, connector.Name, "enrichment.started", domainaudit.SeverityLow,
		fmt.Sprintf("running enrichment connector %s", connector.Name)); err != nil {
		return EnrichmentResult{}, err
	}

	result, err := runConnectorSandboxed(connector, input)
	if err != nil {
		_ = emitEnrichmentEvent(ctx, auditor, tenantID, dealID, connector.Name, "enrichment.failed", domainaudit.SeverityHigh, err.Error())
		return EnrichmentResult{}, apperr.Downstream(connector.Name, err)
	}

	if err := emitEnrichmentEvent(ctx, auditor, tenantID, dealID, connector.Name, "enrichment.completed", domainaudit.SeverityLow,
		fmt.Sprintf("connector %s completed", connector.Name)); err != nil {
		return EnrichmentResult{}, err
	}
	return result, nil
}

// runConnectorSandboxed runs one connector script in an isolated goja
// runtime. Each call gets its own VM so connectors never share JS state.
// The script is interrupted if it runs past Timeout, since goja has no
// built-in deadline and a hung connector script must not block the
// ENRICHMENT step indefinitely.
func runConnectorSandboxed(connector Connector, input map[string]interface{}) (EnrichmentResult, error) {
	vm := goja.New()

	var logs []string
	console := vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		for _, arg := range call.Arguments {
			logs = append(logs, arg.String())
		}
		return goja.Undefined()
	})
	_ = vm.Set("console", console)
	_ = vm.Set("input", vm.ToValue(input))

	timeout := connector.Timeout
	if timeout <= 0 {
		timeout = defaultConnectorTimeout
	}
	timer := time.AfterFunc(timeout, func() {
		vm.Interrupt("enrichment connector exceeded its timeout")
	})
	defer timer.Stop()

	if _, err := vm.RunString(connector.Script); err != nil {
		return EnrichmentResult{}, fmt.Errorf("compile connector %s: %w", connector.Name, err)
	}

	entry, ok := goja.AssertFunction(vm.Get(connector.EntryPoint))
	if !ok {
		return EnrichmentResult{}, fmt.Errorf("connector %s: entry point %q is not a function", connector.Name, connector.EntryPoint)
	}

	resultVal, err := entry(goja.Undefined(), vm.Get("input"))
	if err != nil {
		return EnrichmentResult{}, fmt.Errorf("run connector %s: %w", connector.Name, err)
	}

	output, _ := resultVal.Export().(map[string]interface{})
	return EnrichmentResult{ConnectorName: connector.Name, Output: output, Logs: logs}, nil
}

func emitEnrichmentEvent(ctx context.Context, auditor *audit.Pipeline, tenantID, dealID, connectorName, eventType string, severity domainaudit.Severity, summary string) error {
	ev, err := audit.Build(audit.BuildParams{
		TenantID:     tenantID,
		Actor:        domainaudit.Actor{ActorType: domainaudit.ActorService, ActorID: "enrichment-connector:" + connectorName},
		RequestID:    idgen.New(),
		Method:       "INTERNAL",
		Path:         "enrichment/" + connectorName,
		StatusCode:   200,
		ResourceType: "DEAL",
		ResourceID:   dealID,
		EventType:    eventType,
		Severity:     severity,
		Summary:      summary,
	})
	if err != nil {
		return err
	}
	return auditor.Emit(ctx, ev)
}
