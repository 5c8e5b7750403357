// Package auth provides authentication and authorization functionality for the application.
//
// This package implements a Role-Based Access Control (RBAC) system with two
// authentication paths:
//   - Local database authentication with Argon2id password hashing
//   - OAuth sign-in with external providers (handled by the oauth package,
//     which resolves accounts into the same user table)
//
// # Permission Catalog
//
// The set of permissions is a closed catalog defined at compile time in
// catalog.go, in "resource.action" form. The four built-in roles
// (super_admin, admin, manager, member) each map to a default permission
// subset via DefaultPermissionsForRole; that mapping is the seed policy only.
// Actual grants live in the role_permissions join table, so later edits to a
// role are independent of the defaults.
//
// # Authorization System
//
//   - Users hold roles through the user_roles join table (the admin UI
//     applies a single-role policy on top of it)
//   - Roles contain a set of permissions
//   - Permissions can also be granted directly to a user as an override,
//     evaluated before the role fallback
//
// # Permission Checking
//
// The Service type provides methods for authorization decisions:
//   - UserHasRole / UserHasAnyRole: role membership checks
//   - UserHasPermission: direct grants first, then role permissions
//   - UserPermissions: all effective permissions for a user
//
// # Role Management
//
// Service also carries the administrator-only role mutations:
//   - CreateRole / UpdateRole: validated against the closed catalog, the
//     permission set is replaced wholesale on update
//   - DeleteRole: refused while any user still holds the role
//   - SetUserRole: the single-role boundary operation used by the admin
//     user-edit flow
//
// # Middleware
//
// Fiber middleware functions are provided for route protection:
//   - RequireAdmin: any admin-level role (super_admin, admin, manager)
//   - RequirePermission: a specific permission
//
// Both redirect unauthenticated requests to the login page and answer
// authenticated requests without the required grant with 403 Forbidden.
//
// Example usage:
//
//	authService := auth.NewService(db)
//
//	app.Get("/admin/users",
//	    auth.RequirePermission(authService, auth.PermUsersView),
//	    handler,
//	)
package auth
