package security

import "time"

// RetentionClass is the closed set of data classes a retention policy
// governs (spec.md §3 Lifecycle; original_source compliance/retention.py
// RetentionClass).
type RetentionClass string

const (
	RetentionRawDocuments RetentionClass = "RAW_DOCUMENTS"
	RetentionDeliverables RetentionClass = "DELIVERABLES"
	RetentionAuditEvents  RetentionClass = "AUDIT_EVENTS"
)

// HoldTarget is the closed set of resource kinds BlockDeletionIfHeld can be
// asked about.
type HoldTarget string

const (
	HoldTargetDeal     HoldTarget = "DEAL"
	HoldTargetDocument HoldTarget = "DOCUMENT"
	// HoldTargetArtifact covers deliverables and any other generated
	// artifact, matching original_source's ARTIFACT target kind.
	HoldTargetArtifact HoldTarget = "ARTIFACT"
)

// RetentionPolicy is the retention configuration for one RetentionClass.
// RetentionDays of 0 means indefinite retention while the resource is
// active (no automatic expiry).
type RetentionPolicy struct {
	RetentionClass        RetentionClass
	RetentionDays         int
	HardDeleteAllowed     bool
	RequiresAdminApproval bool
}

// DefaultRetentionPolicies mirrors original_source's
// DEFAULT_RETENTION_POLICIES exactly: raw documents carry no automatic
// expiry (deleted only on request, admin-approved), deliverables and audit
// events both carry a 2555-day (7-year) floor, and audit events can never be
// hard-deleted even once that floor has passed.
var DefaultRetentionPolicies = map[RetentionClass]RetentionPolicy{
	RetentionRawDocuments: {
		RetentionClass:        RetentionRawDocuments,
		RetentionDays:         0,
		HardDeleteAllowed:     true,
		RequiresAdminApproval: true,
	},
	RetentionDeliverables: {
		RetentionClass:        RetentionDeliverables,
		RetentionDays:         2555,
		HardDeleteAllowed:     true,
		RequiresAdminApproval: true,
	},
	RetentionAuditEvents: {
		RetentionClass:        RetentionAuditEvents,
		RetentionDays:         2555,
		HardDeleteAllowed:     false,
		RequiresAdminApproval: true,
	},
}

// EvaluateRetention reports whether a resource created at createdAt is still
// within its RetentionClass's retention window as of now, and the earliest
// instant it becomes eligible for deletion. A within-retention result of
// true means deletion must be blocked regardless of legal hold status.
// earliestDelete is the zero time when the class's retention is indefinite
// (RetentionDays == 0) or the class is unrecognized.
func EvaluateRetention(class RetentionClass, createdAt, now time.Time) (withinRetention bool, earliestDelete time.Time) {
	policy, ok := DefaultRetentionPolicies[class]
	if !ok || policy.RetentionDays == 0 {
		return false, time.Time{}
	}
	earliestDelete = createdAt.AddDate(0, 0, policy.RetentionDays)
	return now.Before(earliestDelete), earliestDelete
}

// CanHardDelete reports whether class permits hard delete at all, independent
// of retention window or legal hold (AUDIT_EVENTS never does).
func CanHardDelete(class RetentionClass) bool {
	policy, ok := DefaultRetentionPolicies[class]
	return ok && policy.HardDeleteAllowed
}

// RequiresAdminApproval reports whether hard-deleting a resource of class
// requires the acting TenantContext to carry RoleAdmin.
func RequiresAdminApproval(class RetentionClass) bool {
	policy, ok := DefaultRetentionPolicies[class]
	return !ok || policy.RequiresAdminApproval
}
