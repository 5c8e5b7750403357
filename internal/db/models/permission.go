package models

import "time"

// Permission represents a specific permission in the authorization system.
// Permissions define granular access rights in "resource.action" form
// (e.g. "users.view"). The full set is a closed catalog defined in source;
// rows here mirror that catalog so grants can be joined relationally.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Name is the permission identifier, unique within its guard.
	Name string `gorm:"size:100;not null;uniqueIndex:idx_permission_name_guard"`
	// Guard is the authorization realm the permission belongs to.
	Guard string `gorm:"size:20;not null;default:'web';uniqueIndex:idx_permission_name_guard"`
	// Resource is the resource this permission applies to (e.g. "users", "roles").
	Resource string `gorm:"size:100;not null"`
	// Action is the action allowed on the resource (e.g. "view", "create", "delete").
	Action string `gorm:"size:50;not null"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"size:255"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
// This overrides GORM's default pluralized table naming.
func (Permission) TableName() string {
	return "permissions"
}
