package login

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iambhavikmistry/starter-kit/internal/auth"
	"github.com/iambhavikmistry/starter-kit/internal/config"
	"github.com/iambhavikmistry/starter-kit/internal/oauth"
	"github.com/iambhavikmistry/starter-kit/internal/web/handler"
	"github.com/iambhavikmistry/starter-kit/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = "/login"

	// TemplateName is the name of the login template.
	TemplateName = "login"
)

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	localAuth *auth.LocalProvider
	gate      *oauth.Gate
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, gate *oauth.Gate) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app, cfg or db is nil")
	}

	s.db = db
	s.cfg = cfg
	s.localAuth = auth.NewLocalProvider(db)
	s.gate = gate

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// renderData builds the common template data for the login page.
func (s *Service) renderData(extra fiber.Map) fiber.Map {
	data := fiber.Map{
		"providers": s.enabledProviders(),
	}

	for k, v := range extra {
		data[k] = v
	}

	return data
}

// enabledProviders lists the external login providers to show as buttons.
func (s *Service) enabledProviders() []string {
	if s.gate == nil {
		return nil
	}

	return s.gate.EnabledProviders()
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.Render(TemplateName, s.renderData(fiber.Map{
		"message": c.Query("message", ""),
	}))
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	var in struct {
		Email    string `form:"email"`
		Password string `form:"password"`
		Remember bool   `form:"remember"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(TemplateName, s.renderData(fiber.Map{
			"error": ErrInvalidFormData.Error(),
		}))
	}

	user, err := s.localAuth.Authenticate(in.Email, in.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			log.Error().Err(err).Msg("local authentication failed")
		}

		return c.Status(fiber.StatusUnauthorized).Render(TemplateName, s.renderData(fiber.Map{
			"error": ErrInvalidCredentials.Error(),
		}))
	}

	exp := s.sessionExpiry(in.Remember)

	if err = session.Login(c, *user, exp, s.cfg.DevMode); err != nil {
		log.Error().Err(err).Msg("failed to create session")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateName, s.renderData(fiber.Map{
			"error": ErrInternalServerError.Error(),
		}))
	}

	return c.Redirect("/dashboard")
}

// sessionExpiry picks the session lifetime depending on the remember flag.
func (s *Service) sessionExpiry(remember bool) time.Duration {
	if remember {
		return s.cfg.Webserver.Session.RememberExpiryTime
	}

	return s.cfg.Webserver.Session.ExpiryTime
}
