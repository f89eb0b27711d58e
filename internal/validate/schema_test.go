package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albarami/idis/internal/domain/audit"
)

func validEvent() audit.Event {
	return audit.Event{
		EventID:   "event-1",
		TenantID:  "tenant-1",
		Actor:     audit.Actor{ActorID: "actor-1"},
		Request:   audit.Request{RequestID: "req-1"},
		Resource:  audit.Resource{ResourceType: "deal", ResourceID: "deal-1"},
		Summary:   "deal created",
		EventType: "deal.created",
		Severity:  audit.SeverityLow,
	}
}

func TestAuditEvent_AcceptsAFullyPopulatedEvent(t *testing.T) {
	assert.NoError(t, AuditEvent(validEvent()))
}

func TestAuditEvent_CollectsEveryMissingRequiredField(t *testing.T) {
	err := AuditEvent(audit.Event{})

	require.Error(t, err)
	schemaErr, ok := err.(*AuditEventError)
	require.True(t, ok)
	assert.Contains(t, schemaErr.Violations, "event_id is required")
	assert.Contains(t, schemaErr.Violations, "tenant_id is required")
	assert.Contains(t, schemaErr.Violations, "actor.actor_id is required")
	assert.Contains(t, schemaErr.Violations, "request.request_id is required")
	assert.Contains(t, schemaErr.Violations, "resource.resource_type and resource.resource_id are required")
	assert.Contains(t, schemaErr.Violations, "summary is required")
}

func TestAuditEvent_RejectsEventTypeWithoutWhitelistedPrefix(t *testing.T) {
	ev := validEvent()
	ev.EventType = "unknown_domain.something"

	err := AuditEvent(ev)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match any whitelisted prefix")
}

func TestAuditEvent_RejectsSeverityOutsideClosedSet(t *testing.T) {
	ev := validEvent()
	ev.Severity = audit.Severity("URGENT")

	err := AuditEvent(ev)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not in the closed set")
}

func TestAuditEvent_RejectsTopLevelRedactedKey(t *testing.T) {
	ev := validEvent()
	ev.Payload.Safe = map[string]interface{}{"password": "hunter2"}

	err := AuditEvent(ev)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `blocked key "password"`)
}

func TestAuditEvent_RejectsRedactedKeyNestedInsideMapsAndSlices(t *testing.T) {
	ev := validEvent()
	ev.Payload.Safe = map[string]interface{}{
		"nested": []interface{}{
			map[string]interface{}{"API_KEY": "sk-live-123"},
		},
	}

	err := AuditEvent(ev)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `blocked key "API_KEY"`)
}

func TestAuditEvent_AllowsPayloadWithoutBlockedKeys(t *testing.T) {
	ev := validEvent()
	ev.Payload.Safe = map[string]interface{}{"deal_name": "Acme Corp"}

	assert.NoError(t, AuditEvent(ev))
}
