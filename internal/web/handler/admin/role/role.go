// Package role provides handlers for managing roles and their permissions in admin area.
package role

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iambhavikmistry/starter-kit/internal/auth"
	"github.com/iambhavikmistry/starter-kit/internal/config"
	"github.com/iambhavikmistry/starter-kit/internal/db/models"
	"github.com/iambhavikmistry/starter-kit/internal/web/handler"
	"github.com/iambhavikmistry/starter-kit/internal/web/navigation"
)

const (
	// Path is the base path for role management.
	Path = handler.RootPath + "admin/role"

	// TemplateList is the template for listing roles.
	TemplateList = "admin/role/list"
	// TemplateForm is the template for creating/updating a role.
	TemplateForm = "admin/role/form"
)

// Service provides CRUD operations for roles.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService

	// Routes
	app.Get(Path,
		auth.RequirePermission(authService, auth.PermRolesView),
		s.List,
	)
	app.Get(Path+"/new",
		auth.RequirePermission(authService, auth.PermRolesCreate),
		s.New,
	)
	app.Post(Path,
		auth.RequirePermission(authService, auth.PermRolesCreate),
		s.Create,
	)
	app.Get(Path+"/:id/edit",
		auth.RequirePermission(authService, auth.PermRolesUpdate),
		s.Edit,
	)
	app.Post(Path+"/:id",
		auth.RequirePermission(authService, auth.PermRolesUpdate),
		s.Update,
	)
	app.Post(Path+"/:id/delete",
		auth.RequirePermission(authService, auth.PermRolesDelete),
		s.Delete,
	)
}

func listNav() *navigation.Context {
	return navigation.NewAdminContext("Roles", "role").
		AddBreadcrumb("Roles", Path, true)
}

// conflictMessage maps the role mutation errors worth showing to the user.
func conflictMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, auth.ErrRoleNameTaken):
		return "A role with this name already exists", true
	case errors.Is(err, auth.ErrRoleInUse):
		return "This role is still assigned to users and cannot be deleted", true
	case errors.Is(err, auth.ErrSystemRole):
		return "Built-in roles cannot be deleted", true
	case errors.Is(err, auth.ErrEmptyPermissionSet):
		return "A role needs at least one permission", true
	case errors.Is(err, auth.ErrUnknownPermission):
		return "The permission set contains an unknown permission", true
	default:
		return "", false
	}
}

// List shows all roles with their permission counts.
func (s *Service) List(c *fiber.Ctx) error {
	nav := listNav()

	var roles []models.Role
	if err := s.db.Order("name ASC").Find(&roles).Error; err != nil {
		log.Error().Err(err).Msg("failed to load roles")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load roles",
		}, handler.BaseLayout)
	}

	// permission names per role, keyed by role id
	rolePermissions := make(map[uint][]string, len(roles))

	for i := range roles {
		perms, err := s.authService.RolePermissionNames(roles[i].ID)
		if err != nil {
			log.Error().Err(err).Uint("role_id", roles[i].ID).Msg("failed to load role permissions")
			continue
		}

		rolePermissions[roles[i].ID] = perms
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation":      nav,
		"Roles":           roles,
		"RolePermissions": rolePermissions,
	}, handler.BaseLayout)
}

// New shows the creation form with the full permission catalog.
func (s *Service) New(c *fiber.Ctx) error {
	nav := navigation.NewAdminContext("New Role", "role").
		AddBreadcrumb("Roles", Path, false).
		AddBreadcrumb("New", Path+"/new", true)

	return c.Render(TemplateForm, fiber.Map{
		"Navigation":  nav,
		"Role":        models.Role{},
		"IsCreate":    true,
		"Permissions": auth.AllPermissions(),
	}, handler.BaseLayout)
}

// Create creates a new role with the selected permissions.
func (s *Service) Create(c *fiber.Ctx) error {
	var in struct {
		Name        string   `form:"name"`
		Permissions []string `form:"permissions"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(TemplateList, fiber.Map{
			"Navigation": listNav(),
			"Error":      "Invalid form data",
		}, handler.BaseLayout)
	}

	if _, err := s.authService.CreateRole(in.Name, in.Permissions); err != nil {
		if msg, ok := conflictMessage(err); ok {
			return c.Status(fiber.StatusConflict).Render(TemplateList, fiber.Map{
				"Navigation": listNav(),
				"Error":      msg,
			}, handler.BaseLayout)
		}

		log.Error().Err(err).Str("role", in.Name).Msg("failed to create role")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": listNav(),
			"Error":      "Failed to create role",
		}, handler.BaseLayout)
	}

	return c.Redirect(Path)
}

// Edit shows the edit form for a role.
func (s *Service) Edit(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return c.Redirect(Path)
	}

	var role models.Role
	if err := s.db.First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Redirect(Path)
		}

		return c.Status(fiber.StatusInternalServerError).Render(TemplateForm, fiber.Map{
			"Error": "Failed to load role",
		}, handler.BaseLayout)
	}

	granted, err := s.authService.RolePermissionNames(role.ID)
	if err != nil {
		log.Error().Err(err).Uint("role_id", role.ID).Msg("failed to load role permissions")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateForm, fiber.Map{
			"Error": "Failed to load role permissions",
		}, handler.BaseLayout)
	}

	grantedSet := make(map[string]bool, len(granted))
	for _, p := range granted {
		grantedSet[p] = true
	}

	nav := navigation.NewAdminContext("Edit Role", "role").
		AddBreadcrumb("Roles", Path, false).
		AddBreadcrumb("Edit", Path+"/"+strconv.FormatUint(id, 10)+"/edit", true)

	return c.Render(TemplateForm, fiber.Map{
		"Navigation":  nav,
		"Role":        role,
		"IsCreate":    false,
		"Permissions": auth.AllPermissions(),
		"Granted":     grantedSet,
	}, handler.BaseLayout)
}

// Update renames a role and replaces its permission set.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return c.Redirect(Path)
	}

	var in struct {
		Name        string   `form:"name"`
		Permissions []string `form:"permissions"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(TemplateForm, fiber.Map{
			"Error": "Invalid form data",
		}, handler.BaseLayout)
	}

	if _, err := s.authService.UpdateRole(uint(id), in.Name, in.Permissions); err != nil {
		if errors.Is(err, auth.ErrRoleNotFound) {
			return c.Redirect(Path)
		}

		if msg, ok := conflictMessage(err); ok {
			return c.Status(fiber.StatusConflict).Render(TemplateForm, fiber.Map{
				"Error": msg,
			}, handler.BaseLayout)
		}

		log.Error().Err(err).Uint64("role_id", id).Msg("failed to update role")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateForm, fiber.Map{
			"Error": "Failed to update role",
		}, handler.BaseLayout)
	}

	return c.Redirect(Path)
}

// Delete removes a role that is not built-in and not assigned to anyone.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return c.Redirect(Path)
	}

	if err := s.authService.DeleteRole(uint(id)); err != nil {
		if errors.Is(err, auth.ErrRoleNotFound) {
			return c.Redirect(Path)
		}

		if msg, ok := conflictMessage(err); ok {
			return c.Status(fiber.StatusConflict).Render(TemplateList, fiber.Map{
				"Navigation": listNav(),
				"Error":      msg,
			}, handler.BaseLayout)
		}

		log.Error().Err(err).Uint64("role_id", id).Msg("failed to delete role")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": listNav(),
			"Error":      "Failed to delete role",
		}, handler.BaseLayout)
	}

	return c.Redirect(Path)
}
