package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver selects the SQL backend of the transaction store.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// New opens and pings a connection pool for driver.
func New(driver Driver, dsn string) (*sql.DB, error) {
	db, err := open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	switch driver {
	case DriverSQLite:
		// SQLite serializes writers; one connection avoids SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return db, nil
}

func open(driver Driver, dsn string) (*sql.DB, error) {
	var name string

	switch driver {
	case DriverPostgres:
		name = "pgx"
	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}

		name = "sqlite"
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return db, nil
}

// Placeholder returns the bind parameter style of driver.
func Placeholder(driver Driver) sq.PlaceholderFormat {
	if driver == DriverPostgres {
		return sq.Dollar
	}

	return sq.Question
}

// Migrate applies the embedded migrations for driver. It uses its own connection, which is
// closed on return, so the caller's pool is left untouched.
func Migrate(driver Driver, dsn string) error {
	db, err := open(driver, dsn)
	if err != nil {
		return err
	}

	var instance migratedb.Driver

	switch driver {
	case DriverPostgres:
		instance, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	case DriverSQLite:
		instance, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	}

	if err != nil {
		db.Close()
		return fmt.Errorf("creating %s migration driver: %w", driver, err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+string(driver))
	if err != nil {
		db.Close()
		return fmt.Errorf("creating migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, string(driver), instance)
	if err != nil {
		db.Close()
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}
