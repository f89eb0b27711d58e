// Package metrics exposes the Prometheus collectors for the ambient
// observability hooks described in SPEC_FULL.md: run-step transitions,
// audit emissions, calc-engine invocations, extraction-gate blocks, saga
// compensations, and deliverable exports.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every IDIS collector, kept separate from the global
// prometheus registry so tests can assert on a clean set of metrics.
var Registry = prometheus.NewRegistry()

var (
	RunStepTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idis",
			Subsystem: "run",
			Name:      "step_transitions_total",
			Help:      "Run-step status transitions, labelled by step name and resulting status.",
		},
		[]string{"step_name", "status"},
	)

	AuditEmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idis",
			Subsystem: "audit",
			Name:      "emissions_total",
			Help:      "Audit event emission attempts, labelled by sink and outcome.",
		},
		[]string{"sink", "outcome"},
	)

	CalcInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idis",
			Subsystem: "calc",
			Name:      "invocations_total",
			Help:      "Calc engine invocations, labelled by calc_type and outcome.",
		},
		[]string{"calc_type", "outcome"},
	)

	ExtractionGateBlocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idis",
			Subsystem: "extraction_gate",
			Name:      "blocks_total",
			Help:      "Extraction-confidence gate blocks, labelled by reason.",
		},
		[]string{"reason"},
	)

	SagaCompensations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idis",
			Subsystem: "saga",
			Name:      "compensations_total",
			Help:      "Saga compensation invocations, labelled by step and outcome.",
		},
		[]string{"step", "outcome"},
	)

	DeliverableExports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idis",
			Subsystem: "deliverable",
			Name:      "exports_total",
			Help:      "Deliverable export attempts, labelled by format and outcome.",
		},
		[]string{"format", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		RunStepTransitions,
		AuditEmissions,
		CalcInvocations,
		ExtractionGateBlocks,
		SagaCompensations,
		DeliverableExports,
	)
}

// Handler returns the /metrics HTTP handler for this registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
