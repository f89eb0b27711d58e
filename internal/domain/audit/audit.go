// Package audit defines the AuditEvent entity and the closed sets that make
// it fail-closed-validatable: event-type prefixes, severities, actor/resource
// shapes, and the redaction blocklist.
package audit

import "time"

// ActorType is the closed set of audit actor kinds.
type ActorType string

const (
	ActorHuman   ActorType = "HUMAN"
	ActorService ActorType = "SERVICE"
)

// Severity is the closed set of audit severities.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// EventTypePrefixes is the closed set of permitted event-type prefixes
// (spec.md §3). An event type not starting with one of these is rejected by
// the schema validator.
var EventTypePrefixes = []string{
	"deal.", "claim.", "sanad.", "defect.", "calc.", "debate.", "human_gate.",
	"override.", "deliverable.", "break_glass.", "data.", "legal_hold.",
	"byok.", "graph_projection.", "enrichment.", "auth.", "tenant.", "rbac.",
	"webhook.", "integration.", "extraction.", "run.",
}

// RedactionBlocklist is the closed set of payload keys that must never
// appear in an AuditEvent, at any nesting depth (spec.md §6).
var RedactionBlocklist = []string{
	"password", "secret", "api_key", "token", "access_token", "refresh_token",
	"ssn", "social_security", "credit_card", "bank_account", "private_key",
}

// Actor identifies who performed the mutating action.
type Actor struct {
	ActorType ActorType `json:"actor_type"`
	ActorID   string    `json:"actor_id"`
	Roles     []string  `json:"roles"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// Request captures the HTTP request that triggered the event.
type Request struct {
	RequestID      string `json:"request_id"`
	Method         string `json:"method"`
	Path           string `json:"path"`
	StatusCode     int    `json:"status_code"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// Resource identifies the entity mutated by the event.
type Resource struct {
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
}

// Payload carries structured, redaction-checked event detail.
type Payload struct {
	Hashes []string               `json:"hashes,omitempty"`
	Refs   []string               `json:"refs,omitempty"`
	Safe   map[string]interface{} `json:"safe,omitempty"`
}

// Event is the AuditEvent entity (spec.md §3).
type Event struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	TenantID   string    `json:"tenant_id"`
	Actor      Actor     `json:"actor"`
	Request    Request   `json:"request"`
	Resource   Resource  `json:"resource"`
	EventType  string    `json:"event_type"`
	Severity   Severity  `json:"severity"`
	Summary    string    `json:"summary"`
	Payload    Payload   `json:"payload"`
}
