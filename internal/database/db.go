package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Config contains database connection options. Path applies to sqlite;
// Host/Port/User/Password/Name apply to postgres and mysql. DSN overrides
// everything when set.
type Config struct {
	Driver   string
	Path     string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Options  map[string]string
}

// Open initialises a gorm.DB using the provided configuration.
func Open(cfg Config) (*gorm.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = "sqlite"
	}

	switch driver {
	case "sqlite":
		return openSQLite(cfg)
	case "postgres":
		return openPostgres(cfg)
	case "mysql":
		return openMySQL(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
