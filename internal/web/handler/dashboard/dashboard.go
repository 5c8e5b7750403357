// Package dashboard provides the dashboard handler for the signed-in start page.
package dashboard

import (
	"time"

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
	// Path is the path to the dashboard page.
	Path = handler.RootPath + "dashboard"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard/dashboard"

	recentWindow = 30 * 24 * time.Hour
)

// Stats represents the dashboard counters.
type Stats struct {
	Users         int64
	Roles         int64
	RecentLogins  int64
	ExternalUsers int64
}

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	// register routes with permission checks
	app.Get(Path,
		auth.RequirePermission(authService, auth.PermDashboardView),
		s.Get,
	)
}

// Get handles the dashboard page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewContext("Dashboard", "dashboard", "dashboard").
		AddBreadcrumb("Home", Path, false).
		AddBreadcrumb("Dashboard", Path, true)

	stats, err := s.collectStats()
	if err != nil {
		log.Error().Err(err).Msg("failed to collect dashboard stats")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load dashboard")
	}

	siteName := setting.GetString(s.db, "site_name", s.cfg.Title)

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"SiteName":   siteName,
		"Stats":      stats,
	}, handler.BaseLayout)
}

// collectStats gathers the counters shown on the dashboard.
func (s *Service) collectStats() (*Stats, error) {
	var stats Stats

	if err := s.db.Model(&models.User{}).Count(&stats.Users).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Role{}).Count(&stats.Roles).Error; err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-recentWindow)
	if err := s.db.Model(&models.User{}).
		Where("updated_at >= ?", cutoff).
		Count(&stats.RecentLogins).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.User{}).
		Where("provider IS NOT NULL").
		Count(&stats.ExternalUsers).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
