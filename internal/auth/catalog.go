package auth

import "strings"

// Permission constants define the closed permission catalog of the system.
// Every grant is validated against this enumeration, so adding a permission
// is a deliberate code change here plus a seed run.
const (
	// PermDashboardView allows viewing the dashboard.
	PermDashboardView = "dashboard.view"
	// PermAnalyticsView allows viewing analytics data.
	PermAnalyticsView = "analytics.view"

	// PermUsersView allows listing and viewing user accounts.
	PermUsersView = "users.view"
	// PermUsersCreate allows creating user accounts.
	PermUsersCreate = "users.create"
	// PermUsersUpdate allows editing user accounts.
	PermUsersUpdate = "users.update"
	// PermUsersDelete allows deleting user accounts.
	PermUsersDelete = "users.delete"

	// PermRolesView allows listing and viewing roles.
	PermRolesView = "roles.view"
	// PermRolesCreate allows creating roles.
	PermRolesCreate = "roles.create"
	// PermRolesUpdate allows editing roles and their permission sets.
	PermRolesUpdate = "roles.update"
	// PermRolesDelete allows deleting roles.
	PermRolesDelete = "roles.delete"
	// PermRolesAssign allows assigning roles to users.
	PermRolesAssign = "roles.assign"

	// PermSettingsView allows viewing system settings.
	PermSettingsView = "settings.view"
	// PermSettingsUpdate allows changing system settings.
	PermSettingsUpdate = "settings.update"

	// PermBillingView allows viewing billing configuration.
	PermBillingView = "billing.view"
	// PermBillingManage allows managing billing configuration.
	PermBillingManage = "billing.manage"
)

// allPermissions is the catalog in display order.
var allPermissions = []string{
	PermDashboardView,
	PermAnalyticsView,
	PermUsersView,
	PermUsersCreate,
	PermUsersUpdate,
	PermUsersDelete,
	PermRolesView,
	PermRolesCreate,
	PermRolesUpdate,
	PermRolesDelete,
	PermRolesAssign,
	PermSettingsView,
	PermSettingsUpdate,
	PermBillingView,
	PermBillingManage,
}

// AllPermissions returns the full permission catalog in display order.
// The returned slice is a copy; callers may modify it freely.
func AllPermissions() []string {
	out := make([]string, len(allPermissions))
	copy(out, allPermissions)

	return out
}

// PermissionExists reports whether the given name is part of the catalog.
func PermissionExists(name string) bool {
	for _, p := range allPermissions {
		if p == name {
			return true
		}
	}

	return false
}

// PermissionParts splits a permission name into its resource and action.
// A name without a dot yields the whole name as resource and an empty action.
func PermissionParts(name string) (resource, action string) {
	resource, action, _ = strings.Cut(name, ".")
	return resource, action
}

// Built-in role names. The set of built-in roles is fixed; administrators may
// create additional roles with arbitrary permission subsets at runtime.
const (
	// RoleSuperAdmin has the full permission catalog.
	RoleSuperAdmin = "super_admin"
	// RoleAdmin has the full permission catalog.
	RoleAdmin = "admin"
	// RoleManager has a reduced administrative subset.
	RoleManager = "manager"
	// RoleMember can only view the dashboard.
	RoleMember = "member"
)

// BuiltinRoles lists the built-in roles in seniority order.
var BuiltinRoles = []string{RoleSuperAdmin, RoleAdmin, RoleManager, RoleMember}

// AdminRoles lists the roles that grant access to the admin surface.
var AdminRoles = []string{RoleSuperAdmin, RoleAdmin, RoleManager}

// DefaultPermissionsForRole returns the default permission subset for a
// built-in role. This is the seed policy, consulted once at provisioning
// time; it does not participate in authorization checks. Unknown role names
// yield an empty set.
func DefaultPermissionsForRole(role string) []string {
	switch role {
	case RoleSuperAdmin, RoleAdmin:
		return AllPermissions()
	case RoleManager:
		return []string{
			PermDashboardView,
			PermAnalyticsView,
			PermUsersView,
			PermUsersUpdate,
			PermRolesView,
			PermRolesAssign,
			PermSettingsView,
			PermBillingView,
		}
	case RoleMember:
		return []string{PermDashboardView}
	default:
		return nil
	}
}
