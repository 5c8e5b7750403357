package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllPermissions(t *testing.T) {
	perms := AllPermissions()

	assert.Len(t, perms, len(allPermissions))

	// returned slice is a copy, mutating it must not affect the catalog
	perms[0] = "mangled"
	assert.NotEqual(t, "mangled", AllPermissions()[0])
}

func TestPermissionExists(t *testing.T) {
	tests := []struct {
		name       string
		permission string
		want       bool
	}{
		{name: "known permission", permission: PermDashboardView, want: true},
		{name: "another known permission", permission: PermRolesAssign, want: true},
		{name: "unknown permission", permission: "zones.transfer", want: false},
		{name: "empty string", permission: "", want: false},
		{name: "case sensitive", permission: "Dashboard.View", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PermissionExists(tt.permission))
		})
	}
}

func TestPermissionParts(t *testing.T) {
	resource, action := PermissionParts(PermUsersCreate)
	assert.Equal(t, "users", resource)
	assert.Equal(t, "create", action)

	resource, action = PermissionParts("nodot")
	assert.Equal(t, "nodot", resource)
	assert.Equal(t, "", action)
}

func TestDefaultPermissionsForRole(t *testing.T) {
	// super admin and admin hold the full catalog
	assert.ElementsMatch(t, AllPermissions(), DefaultPermissionsForRole(RoleSuperAdmin))
	assert.ElementsMatch(t, AllPermissions(), DefaultPermissionsForRole(RoleAdmin))

	// manager holds a working subset
	managerPerms := DefaultPermissionsForRole(RoleManager)
	assert.Contains(t, managerPerms, PermDashboardView)
	assert.Contains(t, managerPerms, PermUsersView)
	assert.NotContains(t, managerPerms, PermUsersDelete)
	assert.NotContains(t, managerPerms, PermSettingsUpdate)

	// member only sees the dashboard
	assert.Equal(t, []string{PermDashboardView}, DefaultPermissionsForRole(RoleMember))

	// unknown roles get nothing
	assert.Nil(t, DefaultPermissionsForRole("unknown"))
}

func TestBuiltinRoles(t *testing.T) {
	assert.Equal(t, []string{RoleSuperAdmin, RoleAdmin, RoleManager, RoleMember}, BuiltinRoles)

	// admin-level roles are a strict subset of the built-ins
	for _, r := range AdminRoles {
		assert.Contains(t, BuiltinRoles, r)
	}

	assert.NotContains(t, AdminRoles, RoleMember)
}

func TestEveryDefaultPermissionIsInCatalog(t *testing.T) {
	for _, role := range BuiltinRoles {
		for _, p := range DefaultPermissionsForRole(role) {
			assert.True(t, PermissionExists(p), "role %s grants unknown permission %s", role, p)
		}
	}
}
