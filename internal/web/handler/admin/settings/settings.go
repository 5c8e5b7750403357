// Package settings provides handlers for the grouped application settings pages.
package settings

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iambhavikmistry/starter-kit/internal/auth"
	"github.com/iambhavikmistry/starter-kit/internal/config"
	"github.com/iambhavikmistry/starter-kit/internal/db/controller/setting"
	"github.com/iambhavikmistry/starter-kit/internal/db/models"
	"github.com/iambhavikmistry/starter-kit/internal/web/handler"
	"github.com/iambhavikmistry/starter-kit/internal/web/navigation"
)

const (
	// Path is the base path for the settings pages, one page per group.
	Path = handler.RootPath + "admin/settings/:group"

	// TemplateName is the name of the settings group template.
	TemplateName = "admin/settings/group"
)

// Service is the settings handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the settings handler.
var Handler = Service{}

// Init initializes the settings handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	// register routes with permission checks
	app.Get(Path,
		auth.RequirePermission(authService, auth.PermSettingsView),
		s.Get,
	)
	app.Post(Path,
		auth.RequirePermission(authService, auth.PermSettingsUpdate),
		s.Post,
	)
}

// parseGroup resolves and validates the :group route parameter.
func parseGroup(c *fiber.Ctx) (models.SettingGroup, error) {
	group := models.SettingGroup(c.Params("group"))
	if !group.Valid() {
		return "", setting.ErrUnknownGroup
	}

	return group, nil
}

func groupNav(group models.SettingGroup) *navigation.Context {
	return navigation.NewContext(group.Label()+" Settings", "settings", string(group)).
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Settings", "#", false).
		AddBreadcrumb(group.Label(), "/admin/settings/"+string(group), true)
}

// Get renders the settings page for one group.
func (s *Service) Get(c *fiber.Ctx) error {
	group, err := parseGroup(c)
	if err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}

	settings, err := setting.ListByGroup(s.db, group)
	if err != nil {
		log.Error().Err(err).Str("group", string(group)).Msg("failed to load settings")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load settings")
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation": groupNav(group),
		"Group":      group,
		"Groups":     models.SettingGroups,
		"Settings":   settings,
	}, handler.BaseLayout)
}

// Post saves the submitted values for one group. Every field is checked
// against its setting type before anything is written, so a bad field
// rejects the whole form.
func (s *Service) Post(c *fiber.Ctx) error {
	group, err := parseGroup(c)
	if err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}

	settings, err := setting.ListByGroup(s.db, group)
	if err != nil {
		log.Error().Err(err).Str("group", string(group)).Msg("failed to load settings")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load settings")
	}

	values := make(map[string]string, len(settings))

	for i := range settings {
		raw := c.FormValue(settings[i].Key)

		if fieldErr := s.validateField(&settings[i], raw); fieldErr != "" {
			return c.Status(fiber.StatusBadRequest).Render(TemplateName, fiber.Map{
				"Navigation": groupNav(group),
				"Group":      group,
				"Groups":     models.SettingGroups,
				"Settings":   settings,
				"Error":      fieldErr,
			}, handler.BaseLayout)
		}

		values[settings[i].Key] = raw
	}

	for key, raw := range values {
		if _, err = setting.SetValue(s.db, key, raw); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to save setting")

			return c.Status(fiber.StatusInternalServerError).Render(TemplateName, fiber.Map{
				"Navigation": groupNav(group),
				"Group":      group,
				"Groups":     models.SettingGroups,
				"Settings":   settings,
				"Error":      "Failed to save settings",
			}, handler.BaseLayout)
		}
	}

	log.Info().Str("group", string(group)).Int("fields", len(values)).Msg("settings saved")

	return c.Redirect("/admin/settings/" + string(group))
}

const (
	// maxTextLen bounds single-line text values.
	maxTextLen = 255
	// maxTextareaLen bounds multi-line textarea values.
	maxTextareaLen = 5000
)

// validateField checks one submitted value against the setting's declared type.
// It returns a human readable message, empty when the value is acceptable.
func (s *Service) validateField(item *models.Setting, raw string) string {
	switch item.Type {
	case models.SettingTypeBoolean:
		// the hidden-input-plus-checkbox pattern submits "0" or "1";
		// "true"/"false" and the unchecked empty case are accepted too
		switch raw {
		case "", "0", "1", "true", "false":
			return ""
		default:
			return "Field '" + item.Key + "' must be a boolean flag"
		}
	case models.SettingTypeNumber:
		if raw == "" {
			return ""
		}

		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return "Field '" + item.Key + "' must be a number"
		}

		return ""
	case models.SettingTypeSelect:
		if raw == "" {
			return ""
		}

		for _, opt := range item.Options {
			if opt.Key == raw {
				return ""
			}
		}

		return "Field '" + item.Key + "' has an invalid choice"
	case models.SettingTypeTextarea:
		if len(raw) > maxTextareaLen {
			return "Field '" + item.Key + "' may be at most " +
				strconv.Itoa(maxTextareaLen) + " characters"
		}

		return ""
	default:
		return s.validateTextField(item, raw)
	}
}

// validateTextField applies the length bound and per-key validator rules
// for single-line fields.
func (s *Service) validateTextField(item *models.Setting, raw string) string {
	if raw == "" {
		return ""
	}

	if len(raw) > maxTextLen {
		return "Field '" + item.Key + "' may be at most " +
			strconv.Itoa(maxTextLen) + " characters"
	}

	var rule string

	switch item.Key {
	case "mail_from_address":
		rule = "email"
	case "social_facebook", "social_twitter", "social_instagram", "social_linkedin":
		rule = "url"
	default:
		if strings.HasSuffix(item.Key, "_redirect_uri") {
			rule = "url"
			break
		}

		return ""
	}

	if err := s.validator.Var(raw, rule); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return "Field '" + item.Key + "' failed validation tag '" + rule + "'"
		}

		return "Field '" + item.Key + "' is invalid"
	}

	return ""
}
