// Package validate implements the fail-closed validators named in spec.md
// §2 layer 4: audit-event schema, No-Free-Facts, Muhasabah gate reason
// checks, and the calc-engine extraction-confidence gate.
package validate

import (
	"fmt"
	"strings"

	"github.com/albarami/idis/internal/domain/audit"
)

// AuditEventError lists every schema violation found for one event; the
// audit pipeline treats any non-empty result as fatal (spec.md §4.5 step 2).
type AuditEventError struct {
	Violations []string
}

func (e *AuditEventError) Error() string {
	return fmt.Sprintf("audit event schema violations: %s", strings.Join(e.Violations, "; "))
}

var severitySet = map[audit.Severity]bool{
	audit.SeverityLow: true, audit.SeverityMedium: true,
	audit.SeverityHigh: true, audit.SeverityCritical: true,
}

// AuditEvent validates ev against the closed schema: required fields
// present, event-type prefix whitelisted, severity in the closed set, and no
// payload key matching the redaction blocklist at any depth.
func AuditEvent(ev audit.Event) error {
	var violations []string

	if ev.EventID == "" {
		violations = append(violations, "event_id is required")
	}
	if ev.TenantID == "" {
		violations = append(violations, "tenant_id is required")
	}
	if ev.Actor.ActorID == "" {
		violations = append(violations, "actor.actor_id is required")
	}
	if ev.Request.RequestID == "" {
		violations = append(violations, "request.request_id is required")
	}
	if ev.Resource.ResourceType == "" || ev.Resource.ResourceID == "" {
		violations = append(violations, "resource.resource_type and resource.resource_id are required")
	}
	if ev.Summary == "" {
		violations = append(violations, "summary is required")
	}
	if !hasWhitelistedPrefix(ev.EventType) {
		violations = append(violations, fmt.Sprintf("event_type %q does not match any whitelisted prefix", ev.EventType))
	}
	if !severitySet[ev.Severity] {
		violations = append(violations, fmt.Sprintf("severity %q is not in the closed set", ev.Severity))
	}
	if key, ok := findRedactedKey(ev.Payload.Safe); ok {
		violations = append(violations, fmt.Sprintf("payload.safe contains blocked key %q", key))
	}

	if len(violations) > 0 {
		return &AuditEventError{Violations: violations}
	}
	return nil
}

func hasWhitelistedPrefix(eventType string) bool {
	for _, prefix := range audit.EventTypePrefixes {
		if strings.HasPrefix(eventType, prefix) {
			return true
		}
	}
	return false
}

// findRedactedKey walks payload recursively (maps and slices) looking for a
// key on the redaction blocklist, case-insensitively.
func findRedactedKey(payload map[string]interface{}) (string, bool) {
	blocked := make(map[string]bool, len(audit.RedactionBlocklist))
	for _, k := range audit.RedactionBlocklist {
		blocked[k] = true
	}
	return findRedactedKeyIn(payload, blocked)
}

func findRedactedKeyIn(v interface{}, blocked map[string]bool) (string, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, sub := range t {
			if blocked[strings.ToLower(k)] {
				return k, true
			}
			if key, ok := findRedactedKeyIn(sub, blocked); ok {
				return key, true
			}
		}
	case []interface{}:
		for _, item := range t {
			if key, ok := findRedactedKeyIn(item, blocked); ok {
				return key, true
			}
		}
	}
	return "", false
}
