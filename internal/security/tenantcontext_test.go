package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRole_AcceptsOnlyTheClosedRoleSet(t *testing.T) {
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleAnalyst))
	assert.True(t, ValidRole(RolePartner))
	assert.True(t, ValidRole(RoleAuditor))
	assert.True(t, ValidRole(RoleIntegrationService))
	assert.False(t, ValidRole(Role("SUPERUSER")))
}

func TestTenantContext_HasRole_FalseWhenRoleAbsentOrRolesEmpty(t *testing.T) {
	ctx := TenantContext{Roles: []Role{RoleAnalyst}}

	assert.True(t, ctx.HasRole(RoleAnalyst))
	assert.False(t, ctx.HasRole(RoleAdmin))
	assert.False(t, TenantContext{}.HasRole(RoleAnalyst))
}
