package config

// Supported gorm database engines.
const (
	GormEngineMySQL    = "mysql"
	GormEnginePostgres = "postgres"
)

// DB holds the database configuration settings.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	GormEngine string // "mysql" or "postgres"
}
