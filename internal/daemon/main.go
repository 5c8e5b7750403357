package daemon

import (
	"fmt"

	"github.com/gofiber/storage"
	sessionmysql "github.com/gofiber/storage/mysql"
	sessionpostgres "github.com/gofiber/storage/postgres"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/iambhavikmistry/starter-kit/internal/config"
	"github.com/iambhavikmistry/starter-kit/internal/db/dsn"
	"github.com/iambhavikmistry/starter-kit/internal/db/models"
	"github.com/iambhavikmistry/starter-kit/internal/web"
	"github.com/iambhavikmistry/starter-kit/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	webService *web.Service
	cfg        *config.Config
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// openDB opens the gorm connection for the configured engine.
// TranslateError is on so unique constraint violations surface as
// gorm.ErrDuplicatedKey across engines.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}

	if cfg.DB.GormEngine == config.GormEnginePostgres {
		return gorm.Open(gormpostgres.Open(dsn.Create(cfg)), gormCfg)
	}

	return gorm.Open(gormmysql.Open(dsn.Create(cfg)), gormCfg)
}

// newSessionStorage builds the fiber session storage for the configured engine.
func newSessionStorage(cfg *config.Config) storage.Storage {
	if cfg.DB.GormEngine == config.GormEnginePostgres {
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: "postgres://" + cfg.DB.User + ":" + cfg.DB.Password +
				"@" + fmt.Sprintf("%s:%d", cfg.DB.Host, cfg.DB.Port) + "/" + cfg.DB.Name,
			Table: "sessions",
		})
	}

	return sessionmysql.New(sessionmysql.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         "sessions",
	})
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.UserRole{},
		&models.UserPermission{},
		&models.Setting{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	if err = seed(cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
		return nil
	}

	// Initialize fiber session store on the same database engine
	session.Init(newSessionStorage(cfg))

	return &Daemon{
		webService: web.New(cfg, db),
		cfg:        cfg,
	}
}
