package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/iambhavikmistry/starter-kit/internal/db/models"
)

// Service provides authorization decisions and role management.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// UserHasRole checks if the user holds the role with the given name.
func (s *Service) UserHasRole(userID uint64, roleName string) (bool, error) {
	var count int64

	err := s.db.Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ? AND roles.name = ? AND roles.guard = ?",
			userID, roleName, models.GuardWeb).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}

	return count > 0, nil
}

// UserHasAnyRole checks if the user holds at least one of the given roles.
func (s *Service) UserHasAnyRole(userID uint64, roleNames []string) (bool, error) {
	if len(roleNames) == 0 {
		return false, nil
	}

	var count int64

	err := s.db.Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ? AND roles.name IN ? AND roles.guard = ?",
			userID, roleNames, models.GuardWeb).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check roles: %w", err)
	}

	return count > 0, nil
}

// UserHasPermission checks if a user has a specific permission.
// Direct grants to the user are the override path and are evaluated first;
// only when no direct grant exists does the check fall back to the
// permissions of the user's roles.
func (s *Service) UserHasPermission(userID uint64, permission string) (bool, error) {
	var count int64

	// Direct user grants override roles
	err := s.db.Table("permissions").
		Joins("JOIN user_permissions ON user_permissions.permission_id = permissions.id").
		Where("user_permissions.user_id = ? AND permissions.name = ? AND permissions.guard = ?",
			userID, permission, models.GuardWeb).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check direct permission: %w", err)
	}

	if count > 0 {
		return true, nil
	}

	// Fall back to permissions of the user's roles
	err = s.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ? AND permissions.name = ? AND permissions.guard = ?",
			userID, permission, models.GuardWeb).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role permission: %w", err)
	}

	return count > 0, nil
}

// UserPermissions retrieves all effective permissions for a user,
// merging direct grants with role permissions.
func (s *Service) UserPermissions(userID uint64) ([]string, error) {
	var direct []string

	err := s.db.Table("permissions").
		Select("DISTINCT permissions.name").
		Joins("JOIN user_permissions ON user_permissions.permission_id = permissions.id").
		Where("user_permissions.user_id = ?", userID).
		Pluck("permissions.name", &direct).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get direct permissions: %w", err)
	}

	var fromRoles []string

	err = s.db.Table("permissions").
		Select("DISTINCT permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Pluck("permissions.name", &fromRoles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get role permissions: %w", err)
	}

	permMap := make(map[string]bool, len(direct)+len(fromRoles))
	for _, perm := range direct {
		permMap[perm] = true
	}

	for _, perm := range fromRoles {
		permMap[perm] = true
	}

	// Keep catalog order for stable output
	result := make([]string, 0, len(permMap))
	for _, perm := range allPermissions {
		if permMap[perm] {
			result = append(result, perm)
		}
	}

	return result, nil
}

// UserRoles retrieves all roles a user holds.
func (s *Service) UserRoles(userID uint64) ([]models.Role, error) {
	var roles []models.Role

	err := s.db.Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name ASC").
		Find(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}

	return roles, nil
}

// RolePermissionNames retrieves the permission names assigned to a role.
func (s *Service) RolePermissionNames(roleID uint) ([]string, error) {
	var names []string

	err := s.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.id ASC").
		Pluck("permissions.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get role permissions: %w", err)
	}

	return names, nil
}

// validatePermissionSet checks a role mutation's permission set against the catalog.
func validatePermissionSet(permissions []string) error {
	if len(permissions) == 0 {
		return ErrEmptyPermissionSet
	}

	for _, perm := range permissions {
		if !PermissionExists(perm) {
			return fmt.Errorf("%w: %s", ErrUnknownPermission, perm)
		}
	}

	return nil
}

// permissionIDs resolves catalog permission names to their database rows.
// Repeated names collapse to a single grant.
func permissionIDs(tx *gorm.DB, permissions []string) ([]uint, error) {
	seen := make(map[string]struct{}, len(permissions))
	distinct := make([]string, 0, len(permissions))

	for _, name := range permissions {
		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}
		distinct = append(distinct, name)
	}

	var ids []uint

	err := tx.Model(&models.Permission{}).
		Where("name IN ? AND guard = ?", distinct, models.GuardWeb).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve permissions: %w", err)
	}

	if len(ids) != len(distinct) {
		return nil, ErrUnknownPermission
	}

	return ids, nil
}

// syncRolePermissions replaces a role's permission set wholesale.
// Grants not in the new set are revoked.
func syncRolePermissions(tx *gorm.DB, roleID uint, permissionIDs []uint) error {
	if err := tx.Where("role_id = ?", roleID).
		Delete(&models.RolePermission{}).Error; err != nil {
		return fmt.Errorf("failed to revoke old permissions: %w", err)
	}

	for _, pid := range permissionIDs {
		if err := tx.Create(&models.RolePermission{
			RoleID:       roleID,
			PermissionID: pid,
		}).Error; err != nil {
			return fmt.Errorf("failed to grant permission: %w", err)
		}
	}

	return nil
}

// CreateRole creates a role with the given permission set.
// The name must be unique within the guard and every permission must exist in
// the catalog. Uniqueness is enforced by the database constraint, so a
// concurrent create with the same name fails here instead of racing.
func (s *Service) CreateRole(name string, permissions []string) (*models.Role, error) {
	if err := validatePermissionSet(permissions); err != nil {
		return nil, err
	}

	role := models.Role{
		Name:  name,
		Guard: models.GuardWeb,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		ids, err := permissionIDs(tx, permissions)
		if err != nil {
			return err
		}

		if err := tx.Create(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrRoleNameTaken
			}

			return fmt.Errorf("failed to create role: %w", err)
		}

		return syncRolePermissions(tx, role.ID, ids)
	})
	if err != nil {
		return nil, err
	}

	return &role, nil
}

// UpdateRole renames a role and replaces its permission set wholesale.
// The role's own current name is excluded from the uniqueness check, so
// saving the form without renaming is not a conflict.
func (s *Service) UpdateRole(roleID uint, name string, permissions []string) (*models.Role, error) {
	if err := validatePermissionSet(permissions); err != nil {
		return nil, err
	}

	var role models.Role

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&role, roleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}

			return fmt.Errorf("failed to load role: %w", err)
		}

		ids, err := permissionIDs(tx, permissions)
		if err != nil {
			return err
		}

		role.Name = name
		if err := tx.Save(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrRoleNameTaken
			}

			return fmt.Errorf("failed to update role: %w", err)
		}

		return syncRolePermissions(tx, role.ID, ids)
	})
	if err != nil {
		return nil, err
	}

	return &role, nil
}

// DeleteRole deletes a role and its permission grants.
// Deletion is refused while any user still holds the role and for the
// built-in system roles. The in-use check accepts a small race window; role
// deletion is a rare, human-initiated, recoverable action.
func (s *Service) DeleteRole(roleID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var role models.Role

		if err := tx.First(&role, roleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}

			return fmt.Errorf("failed to load role: %w", err)
		}

		if role.IsSystem {
			return ErrSystemRole
		}

		var assigned int64
		if err := tx.Model(&models.UserRole{}).
			Where("role_id = ?", roleID).
			Count(&assigned).Error; err != nil {
			return fmt.Errorf("failed to count role assignments: %w", err)
		}

		if assigned > 0 {
			return ErrRoleInUse
		}

		if err := tx.Where("role_id = ?", roleID).
			Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to delete role permissions: %w", err)
		}

		return tx.Delete(&role).Error
	})
}

// SetUserRole assigns exactly one role to a user, replacing any previous
// assignments. This is the single-role boundary operation used by the admin
// user-edit flow; the underlying model stays many-to-many.
func (s *Service) SetUserRole(userID uint64, roleName string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var role models.Role

		err := tx.Where("name = ? AND guard = ?", roleName, models.GuardWeb).
			First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}

		if err != nil {
			return fmt.Errorf("failed to load role: %w", err)
		}

		if err := tx.Where("user_id = ?", userID).
			Delete(&models.UserRole{}).Error; err != nil {
			return fmt.Errorf("failed to remove old role assignments: %w", err)
		}

		return tx.Create(&models.UserRole{UserID: userID, RoleID: role.ID}).Error
	})
}

// ClearUserRoles removes all role assignments from a user.
func (s *Service) ClearUserRoles(userID uint64) error {
	return s.db.Where("user_id = ?", userID).
		Delete(&models.UserRole{}).Error
}

// GrantUserPermission grants a permission directly to a user, bypassing roles.
func (s *Service) GrantUserPermission(userID uint64, permission string) error {
	if !PermissionExists(permission) {
		return fmt.Errorf("%w: %s", ErrUnknownPermission, permission)
	}

	var perm models.Permission

	err := s.db.Where("name = ? AND guard = ?", permission, models.GuardWeb).
		First(&perm).Error
	if err != nil {
		return fmt.Errorf("failed to load permission: %w", err)
	}

	grant := models.UserPermission{UserID: userID, PermissionID: perm.ID}
	if err := s.db.Create(&grant).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("failed to grant permission: %w", err)
	}

	return nil
}
