package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/budget/internal/database"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Budget"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	Storage struct {
		// Driver is memory, postgres or sqlite.
		Driver     string `envconfig:"STORAGE_DRIVER" default:"memory"`
		SQLitePath string `envconfig:"SQLITE_PATH" default:"data/budget.db"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"budget"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		UploadMaxBytes int64         `envconfig:"UPLOAD_MAX_BYTES" default:"10485760"`
		CORSOrigins    []string      `envconfig:"CORS_ORIGINS" default:"*"`
	}

	Session struct {
		Secret string        `envconfig:"SESSION_SECRET" required:"true"`
		TTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	}
}

// UsesDatabase reports whether ledgers are persisted in SQL.
func (c *Config) UsesDatabase() bool {
	return c.Storage.Driver != "memory"
}

// DatabaseDriver returns the SQL driver selected by STORAGE_DRIVER.
func (c *Config) DatabaseDriver() database.Driver {
	return database.Driver(c.Storage.Driver)
}

// ConnectionString returns the DSN of the selected SQL driver.
func (c *Config) ConnectionString() string {
	if c.DatabaseDriver() == database.DriverSQLite {
		return c.Storage.SQLitePath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Session.Secret == "" {
		return nil, errors.New("SESSION_SECRET must not be empty")
	}

	switch cfg.Storage.Driver {
	case "memory", string(database.DriverPostgres), string(database.DriverSQLite):
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q: want memory, postgres or sqlite", cfg.Storage.Driver)
	}

	return &cfg, nil
}
