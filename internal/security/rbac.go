package security

import "github.com/albarami/idis/internal/platform/apperr"

// Operation is a coarse-grained permission check, not a specific HTTP route:
// every /v1 mutation maps to OpMutate, every /v1 read to OpRead.
type Operation string

const (
	OpRead   Operation = "read"
	OpMutate Operation = "mutate"
)

// rbacMatrix is the role-to-operation matrix (spec.md §4.4 gate 3). AUDITOR
// "may read anything in tenant but mutates nothing".
var rbacMatrix = map[Role]map[Operation]bool{
	RoleAdmin:              {OpRead: true, OpMutate: true},
	RoleAnalyst:            {OpRead: true, OpMutate: true},
	RolePartner:            {OpRead: true, OpMutate: true},
	RoleAuditor:            {OpRead: true, OpMutate: false},
	RoleIntegrationService: {OpRead: true, OpMutate: true},
}

// CheckRBAC enforces the role-to-operation matrix for ctx. A role outside
// the closed set is treated as no permissions at all (fail-closed).
func CheckRBAC(ctx TenantContext, op Operation) error {
	for _, role := range ctx.Roles {
		if rbacMatrix[role][op] {
			return nil
		}
	}
	return apperr.RBACDenied()
}
