// Package user provides handlers for managing users (CRUD) in admin area.
package user

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iambhavikmistry/starter-kit/internal/auth"
	"github.com/iambhavikmistry/starter-kit/internal/config"
	"github.com/iambhavikmistry/starter-kit/internal/db/models"
	"github.com/iambhavikmistry/starter-kit/internal/web/handler"
	"github.com/iambhavikmistry/starter-kit/internal/web/navigation"
	"github.com/iambhavikmistry/starter-kit/internal/web/session"
)

const (
	// Path is the base path for user management.
	Path = handler.RootPath + "admin/user"

	// TemplateList is the template for listing users.
	TemplateList = "admin/user/list"
	// TemplateForm is the template for creating/updating a user.
	TemplateForm = "admin/user/form"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25
)

// Service provides CRUD operations for users.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	validator   *validator.Validate
	authService *auth.Service
	localAuth   *auth.LocalProvider
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
	s.validator = validator.New()
	s.authService = authService
	s.localAuth = auth.NewLocalProvider(db)

	// Routes
	app.Get(Path,
		auth.RequirePermission(authService, auth.PermUsersView),
		s.List,
	)
	app.Get(Path+"/new",
		auth.RequirePermission(authService, auth.PermUsersCreate),
		s.New,
	)
	app.Post(Path,
		auth.RequirePermission(authService, auth.PermUsersCreate),
		s.Create,
	)
	app.Get(Path+"/:id/edit",
		auth.RequirePermission(authService, auth.PermUsersUpdate),
		s.Edit,
	)
	app.Post(Path+"/:id",
		auth.RequirePermission(authService, auth.PermUsersUpdate),
		s.Update,
	)
	app.Post(Path+"/:id/delete",
		auth.RequirePermission(authService, auth.PermUsersDelete),
		s.Delete,
	)
}

func listNav() *navigation.Context {
	return navigation.NewAdminContext("Users", "user").
		AddBreadcrumb("Users", Path, true)
}

// List shows users with simple pagination and search.
func (s *Service) List(c *fiber.Ctx) error {
	nav := listNav()

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	search := c.Query("search", "")

	var (
		users      []models.User
		totalCount int64
		tx         = s.db.Model(&models.User{})
	)

	if search != "" {
		like := "%" + search + "%"
		tx = tx.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	if err := tx.Count(&totalCount).Error; err != nil {
		log.Error().Err(err).Msg("count users failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load users",
			"Search":     search,
		}, handler.BaseLayout)
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}

	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * pageSize
	if err := tx.Order("id DESC").Limit(pageSize).Offset(offset).Find(&users).Error; err != nil {
		log.Error().Err(err).Msg("query users failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load users",
			"Search":     search,
		}, handler.BaseLayout)
	}

	// roles per listed user, keyed by user id
	userRoles := make(map[uint64]string, len(users))

	for i := range users {
		roles, err := s.authService.UserRoles(users[i].ID)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", users[i].ID).Msg("failed to load user roles")
			continue
		}

		if len(roles) > 0 {
			userRoles[users[i].ID] = roles[0].Name
		}
	}

	// Get current user ID from session
	var currentUserID uint64

	if sessionID := c.Cookies(session.CookieName); sessionID != "" {
		sessionData := new(session.Data)
		if err := sessionData.Read(sessionID); err == nil {
			currentUserID = sessionData.User.ID
		}
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation":    nav,
		"Users":         users,
		"UserRoles":     userRoles,
		"CurrentUserID": currentUserID,
		"Search":        search,
		"Page":          page,
		"PageSize":      pageSize,
		"TotalItems":    totalCount,
		"TotalPages":    totalPages,
		"HasPrev":       page > 1,
		"HasNext":       page < totalPages,
		"PrevPage":      page - 1,
		"NextPage":      page + 1,
	}, handler.BaseLayout)
}

// New shows the creation form.
func (s *Service) New(c *fiber.Ctx) error {
	nav := navigation.NewAdminContext("New User", "user").
		AddBreadcrumb("Users", Path, false).
		AddBreadcrumb("New", Path+"/new", true)

	var roles []models.Role
	if err := s.db.Order("name ASC").Find(&roles).Error; err != nil {
		log.Error().Err(err).Msg("failed to load roles")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateForm, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load roles",
		}, handler.BaseLayout)
	}

	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"User":       models.User{},
		"IsCreate":   true,
		"Roles":      roles,
	}, handler.BaseLayout)
}

type userForm struct {
	Name     string `form:"name"     validate:"required,min=2,max=100"`
	Email    string `form:"email"    validate:"required,email,max=255"`
	Password string `form:"password"`
	Role     string `form:"role"`
}

// Create creates a new user.
func (s *Service) Create(c *fiber.Ctx) error {
	var in userForm

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(TemplateList, fiber.Map{
			"Navigation": listNav(),
			"Error":      "Invalid form data",
		}, handler.BaseLayout)
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(TemplateList, fiber.Map{
			"Navigation": listNav(),
			"Error":      "Please correct the highlighted errors",
		}, handler.BaseLayout)
	}

	// new accounts need a credential; only updates may leave it blank
	if len(in.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).Render(TemplateList, fiber.Map{
			"Navigation": listNav(),
			"Error":      "Password must be at least 8 characters",
		}, handler.BaseLayout)
	}

	user, err := s.localAuth.CreateUser(in.Name, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			return c.Status(fiber.StatusConflict).Render(TemplateList, fiber.Map{
				"Navigation": listNav(),
				"Error":      "A user with this email already exists",
			}, handler.BaseLayout)
		}

		log.Error().Err(err).Msg("failed to create user")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": listNav(),
			"Error":      "Failed to create user",
		}, handler.BaseLayout)
	}

	if in.Role != "" {
		if err = s.authService.SetUserRole(user.ID, in.Role); err != nil {
			log.Error().Err(err).Uint64("user_id", user.ID).Str("role", in.Role).
				Msg("failed to assign role")
		}
	}

	return c.Redirect(Path)
}

// Edit shows the edit form for a user.
func (s *Service) Edit(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return c.Redirect(Path)
	}

	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Redirect(Path)
		}

		return c.Status(fiber.StatusInternalServerError).Render(TemplateForm, fiber.Map{
			"Error": "Failed to load user",
		}, handler.BaseLayout)
	}

	var roles []models.Role
	if err := s.db.Order("name ASC").Find(&roles).Error; err != nil {
		log.Error().Err(err).Msg("failed to load roles")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateForm, fiber.Map{
			"Error": "Failed to load roles",
		}, handler.BaseLayout)
	}

	currentRole := ""

	if userRoles, err := s.authService.UserRoles(user.ID); err == nil && len(userRoles) > 0 {
		currentRole = userRoles[0].Name
	}

	nav := navigation.NewAdminContext("Edit User", "user").
		AddBreadcrumb("Users", Path, false).
		AddBreadcrumb("Edit", Path+"/"+strconv.FormatUint(id, 10)+"/edit", true)

	return c.Render(TemplateForm, fiber.Map{
		"Navigation":  nav,
		"User":        user,
		"IsCreate":    false,
		"Roles":       roles,
		"CurrentRole": currentRole,
	}, handler.BaseLayout)
}

// Update updates a user.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return c.Redirect(Path)
	}

	var in userForm
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(TemplateForm, fiber.Map{
			"Error": "Invalid form data",
		}, handler.BaseLayout)
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(TemplateForm, fiber.Map{
			"Error": "Please correct the highlighted errors",
		}, handler.BaseLayout)
	}

	// empty password leaves the current one unchanged
	if err := s.localAuth.UpdateUser(id, in.Name, in.Email, in.Password); err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			return c.Status(fiber.StatusConflict).Render(TemplateForm, fiber.Map{
				"Error": "A user with this email already exists",
			}, handler.BaseLayout)
		}

		log.Error().Err(err).Uint64("user_id", id).Msg("failed to update user")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateForm, fiber.Map{
			"Error": "Failed to update user",
		}, handler.BaseLayout)
	}

	if in.Role != "" {
		if err = s.authService.SetUserRole(id, in.Role); err != nil {
			log.Error().Err(err).Uint64("user_id", id).Str("role", in.Role).
				Msg("failed to assign role")
		}
	}

	return c.Redirect(Path)
}

// Delete removes a user. Deleting your own account is rejected.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return c.Redirect(Path)
	}

	// actor from session
	var actorID uint64

	if sessionID := c.Cookies(session.CookieName); sessionID != "" {
		sessionData := new(session.Data)
		if errRead := sessionData.Read(sessionID); errRead == nil {
			actorID = sessionData.User.ID
		}
	}

	if err := s.localAuth.DeleteUser(actorID, id); err != nil {
		if errors.Is(err, auth.ErrSelfDeletion) {
			return c.Status(fiber.StatusForbidden).Render(TemplateList, fiber.Map{
				"Navigation": listNav(),
				"Error":      "You cannot delete your own account",
			}, handler.BaseLayout)
		}

		if errors.Is(err, auth.ErrUserNotFound) {
			return c.Redirect(Path)
		}

		log.Error().Err(err).Uint64("user_id", id).Msg("failed to delete user")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": listNav(),
			"Error":      "Failed to delete user",
		}, handler.BaseLayout)
	}

	return c.Redirect(Path)
}
