// Package security implements the five overlapping gates evaluated at every
// /v1 mutation (spec.md §4.4): authentication, residency, RBAC, ABAC, and
// claim->deal resolution, plus the break-glass, BYOK, and legal-hold
// controls that sit alongside them. Every gate fails closed: an
// indeterminate input is treated as a denial, never as a pass.
package security

// Role is one of the closed set of actor roles.
type Role string

const (
	RoleAdmin              Role = "ADMIN"
	RoleAnalyst            Role = "ANALYST"
	RolePartner            Role = "PARTNER"
	RoleAuditor            Role = "AUDITOR"
	RoleIntegrationService Role = "INTEGRATION_SERVICE"
)

var validRoles = map[Role]bool{
	RoleAdmin: true, RoleAnalyst: true, RolePartner: true,
	RoleAuditor: true, RoleIntegrationService: true,
}

// ValidRole reports whether r belongs to the closed role set.
func ValidRole(r Role) bool { return validRoles[r] }

// TenantContext is the authenticated request context produced by gate 1
// (Authentication) and consumed by every later gate.
type TenantContext struct {
	TenantID   string
	ActorID    string
	Name       string
	Timezone   string
	DataRegion string
	Roles      []Role
}

// HasRole reports whether ctx carries role r.
func (c TenantContext) HasRole(r Role) bool {
	for _, have := range c.Roles {
		if have == r {
			return true
		}
	}
	return false
}
