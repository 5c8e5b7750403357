package models

import "time"

// GuardWeb is the single authorization realm used by this application.
// The schema keeps the guard column so roles and permissions stay unique
// per realm, mirroring setups where an API guard exists alongside the web one.
const GuardWeb = "web"

// Role represents a role in the role-based access control (RBAC) system.
// Roles are named collections of permissions that can be assigned to users.
// The four built-in roles (super_admin, admin, manager, member) are seeded
// at provisioning time; administrators may create additional ones.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the name of the role, unique within its guard.
	Name string `gorm:"size:100;not null;uniqueIndex:idx_role_name_guard"`
	// Guard is the authorization realm the role belongs to.
	Guard string `gorm:"size:20;not null;default:'web';uniqueIndex:idx_role_name_guard"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255"`
	// IsSystem indicates if this is a built-in role that cannot be deleted.
	IsSystem bool `gorm:"default:false"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}
