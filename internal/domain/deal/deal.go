// Package deal defines the Deal entity: an investment opportunity.
package deal

import "time"

// Stage is the free-form (tenant-configured) pipeline stage of a deal.
// Spec.md leaves the stage vocabulary open; IDIS stores it as a string and
// validates only non-emptiness at the service boundary.
type Stage string

// Status is the closed set of deal lifecycle states.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusArchived Status = "ARCHIVED"
	StatusClosed   Status = "CLOSED"
)

// Deal is an investment opportunity under diligence.
type Deal struct {
	DealID      string
	TenantID    string
	CompanyName string
	Stage       Stage
	Status      Status
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New constructs a Deal in ACTIVE status.
func New(tenantID, companyName string, stage Stage) Deal {
	now := time.Now().UTC()
	return Deal{
		TenantID:    tenantID,
		CompanyName: companyName,
		Stage:       stage,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
