package daemon

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iambhavikmistry/starter-kit/internal/auth"
	"github.com/iambhavikmistry/starter-kit/internal/config"
	"github.com/iambhavikmistry/starter-kit/internal/db/controller/setting"
	"github.com/iambhavikmistry/starter-kit/internal/db/models"
)

// seed brings the database to a usable state: the permission catalog, the
// built-in roles with their default grants, the settings catalog and a first
// admin account. Existing rows are left alone so seeding is re-runnable.
func seed(cfg *config.Config, db *gorm.DB) error {
	if err := seedPermissions(db); err != nil {
		return err
	}

	if err := seedRoles(db); err != nil {
		return err
	}

	if err := setting.Seed(db); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	return seedAdminUser(cfg, db)
}

// seedPermissions mirrors the permission catalog into the database.
func seedPermissions(db *gorm.DB) error {
	for _, name := range auth.AllPermissions() {
		var existing models.Permission

		err := db.Where("name = ? AND guard = ?", name, models.GuardWeb).
			First(&existing).Error
		if err == nil {
			continue
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check permission %s: %w", name, err)
		}

		resource, action := auth.PermissionParts(name)

		perm := models.Permission{
			Name:     name,
			Guard:    models.GuardWeb,
			Resource: resource,
			Action:   action,
		}

		if err := db.Create(&perm).Error; err != nil {
			return fmt.Errorf("failed to create permission %s: %w", name, err)
		}
	}

	return nil
}

// seedRoles creates the built-in roles and their default permission grants.
func seedRoles(db *gorm.DB) error {
	for _, name := range auth.BuiltinRoles {
		var role models.Role

		err := db.Where("name = ? AND guard = ?", name, models.GuardWeb).
			First(&role).Error
		if err == nil {
			continue
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check role %s: %w", name, err)
		}

		role = models.Role{
			Name:     name,
			Guard:    models.GuardWeb,
			IsSystem: true,
		}

		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("failed to create role %s: %w", name, err)
		}

		for _, permName := range auth.DefaultPermissionsForRole(name) {
			var perm models.Permission

			if err := db.Where("name = ? AND guard = ?", permName, models.GuardWeb).
				First(&perm).Error; err != nil {
				return fmt.Errorf("failed to load permission %s: %w", permName, err)
			}

			grant := models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}
			if err := db.Create(&grant).Error; err != nil {
				return fmt.Errorf("failed to grant %s to %s: %w", permName, name, err)
			}
		}

		log.Info().Str("role", name).Msg("created built-in role")
	}

	return nil
}

// seedAdminUser creates a first super admin when the user table is empty.
// The password must be changed after the first login.
func seedAdminUser(_ *config.Config, db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}

	if count > 0 {
		return nil
	}

	password := models.HashPassword("changeme")

	admin := models.User{
		Name:     "Administrator",
		Email:    "admin@localhost",
		Password: &password,
	}

	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	if err := auth.NewService(db).SetUserRole(admin.ID, auth.RoleSuperAdmin); err != nil {
		return fmt.Errorf("failed to assign admin role: %w", err)
	}

	log.Warn().Str("email", admin.Email).Msg("created initial admin user with default password, change it")

	return nil
}
