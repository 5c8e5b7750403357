package oauth

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iambhavikmistry/starter-kit/internal/config"
	"github.com/iambhavikmistry/starter-kit/internal/oauth"
	"github.com/iambhavikmistry/starter-kit/internal/web/handler"
	"github.com/iambhavikmistry/starter-kit/internal/web/handler/login"
	"github.com/iambhavikmistry/starter-kit/internal/web/session"
)

const (
	// RedirectPath is the path to initiate an external login.
	RedirectPath = handler.RootPath + "auth/:provider/redirect"

	// CallbackPath is the path for the provider callback.
	CallbackPath = handler.RootPath + "auth/:provider/callback"

	// stateCookieName holds the CSRF state between redirect and callback.
	stateCookieName = "oauth_state"

	// stateTTL bounds how long a login round-trip may take.
	stateTTL = 5 * time.Minute

	callbackTimeout = 30 * time.Second
)

// Service is the external login handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	db       *gorm.DB
	gate     *oauth.Gate
	resolver *oauth.Resolver
}

// Handler is the external login handler.
var Handler = Service{}

// Init initializes the external login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, gate *oauth.Gate) {
	if app == nil || cfg == nil || db == nil || gate == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.gate = gate
	s.resolver = oauth.NewResolver(db)

	// Register routes
	app.Get(RedirectPath, s.Redirect)
	app.Get(CallbackPath, s.Callback)
}

// Redirect sends the user to the provider's authorization page.
// Unknown and disabled providers both get a plain 404.
func (s *Service) Redirect(c *fiber.Ctx) error {
	provider := c.Params("provider")

	state, err := oauth.GenerateState()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate state token")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	authURL, err := s.gate.Redirect(provider, state)
	if err != nil {
		if errors.Is(err, oauth.ErrProviderNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}

		log.Error().Err(err).Str("provider", provider).Msg("failed to build authorization URL")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	c.Cookie(&fiber.Cookie{
		Name:     stateCookieName,
		Value:    state,
		MaxAge:   int(stateTTL.Seconds()),
		Secure:   !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.Redirect(authURL)
}

// Callback completes the external login flow.
func (s *Service) Callback(c *fiber.Ctx) error {
	provider := c.Params("provider")

	// Re-check the gate first so disabled providers 404 on the callback too.
	if _, err := s.gate.CheckProvider(provider); err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}

	issued := c.Cookies(stateCookieName)
	echoed := c.Query("state")
	c.ClearCookie(stateCookieName)

	if err := oauth.VerifyState(issued, echoed); err != nil {
		log.Warn().Str("provider", provider).Msg("state mismatch on callback")

		return s.failLogin(c, "Login attempt expired, please try again.")
	}

	code := c.Query("code")
	if code == "" {
		return s.failLogin(c, "Login was cancelled or denied.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()

	identity, err := s.gate.Callback(ctx, provider, code)
	if err != nil {
		if errors.Is(err, oauth.ErrProviderNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}

		if errors.Is(err, oauth.ErrEmailMissing) {
			return s.failLogin(c, "Your account did not share an email address, please use another login method.")
		}

		// anything else from the exchange is fatal, not recoverable
		log.Error().Err(err).Str("provider", provider).Msg("external login failed")

		return err
	}

	user, err := s.resolver.Resolve(provider, identity)
	if err != nil {
		if errors.Is(err, oauth.ErrEmailMissing) {
			return s.failLogin(c, "Your account did not share an email address, please use another login method.")
		}

		log.Error().Err(err).Str("provider", provider).Msg("failed to resolve account")

		return err
	}

	// External logins always get the long session
	exp := s.cfg.Webserver.Session.RememberExpiryTime

	if err = session.Login(c, *user, exp, s.cfg.DevMode); err != nil {
		log.Error().Err(err).Msg("failed to create session")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	log.Info().Str("provider", provider).Uint64("user_id", user.ID).Msg("user logged in via external provider")

	return c.Redirect("/dashboard")
}

// failLogin sends the user back to the login page with a human readable message.
// These failures are recoverable, the user can simply start over.
func (s *Service) failLogin(c *fiber.Ctx, message string) error {
	return c.Redirect(login.Path + "?message=" + url.QueryEscape(message))
}
