package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateRetention_RawDocumentsHaveIndefiniteRetention(t *testing.T) {
	createdAt := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	within, earliest := EvaluateRetention(RetentionRawDocuments, createdAt, now)

	assert.False(t, within)
	assert.True(t, earliest.IsZero())
}

func TestEvaluateRetention_DeliverablesAreWithinRetentionForSevenYears(t *testing.T) {
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	withinSoon, earliest := EvaluateRetention(RetentionDeliverables, createdAt, createdAt.AddDate(1, 0, 0))
	assert.True(t, withinSoon)
	assert.Equal(t, createdAt.AddDate(0, 0, 2555), earliest)

	withinLater, _ := EvaluateRetention(RetentionDeliverables, createdAt, createdAt.AddDate(8, 0, 0))
	assert.False(t, withinLater)
}

func TestCanHardDelete_AuditEventsAreNeverHardDeletable(t *testing.T) {
	assert.False(t, CanHardDelete(RetentionAuditEvents))
	assert.True(t, CanHardDelete(RetentionDeliverables))
	assert.True(t, CanHardDelete(RetentionRawDocuments))
}

func TestRequiresAdminApproval_EveryDefaultClassRequiresIt(t *testing.T) {
	assert.True(t, RequiresAdminApproval(RetentionRawDocuments))
	assert.True(t, RequiresAdminApproval(RetentionDeliverables))
	assert.True(t, RequiresAdminApproval(RetentionAuditEvents))
	assert.True(t, RequiresAdminApproval(RetentionClass("UNKNOWN")), "an unrecognized class must fail closed and require approval")
}
