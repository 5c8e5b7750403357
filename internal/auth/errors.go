package auth

import "errors"

var (
	// ErrRoleNameTaken is returned when creating or renaming a role to a name
	// already used by another role in the same guard.
	ErrRoleNameTaken = errors.New("role with this name already exists")

	// ErrEmptyPermissionSet is returned when a role mutation carries no permissions.
	ErrEmptyPermissionSet = errors.New("at least one permission must be selected")

	// ErrUnknownPermission is returned when a role mutation references a
	// permission that is not part of the catalog.
	ErrUnknownPermission = errors.New("one or more selected permissions are invalid")

	// ErrRoleInUse is returned when deleting a role that is still assigned to users.
	ErrRoleInUse = errors.New("cannot delete a role that is assigned to users")

	// ErrSystemRole is returned when deleting one of the built-in roles.
	ErrSystemRole = errors.New("cannot delete a system role")

	// ErrRoleNotFound is returned when a role cannot be found in the database.
	ErrRoleNotFound = errors.New("role not found")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when attempting to create a user with an
	// email address that already exists.
	ErrEmailExists = errors.New("user with this email already exists")

	// ErrInvalidCredentials is returned when the email/password pair is not
	// valid for local authentication.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrSelfDeletion is returned when an administrator attempts to delete
	// their own account.
	ErrSelfDeletion = errors.New("you cannot delete your own account")
)
