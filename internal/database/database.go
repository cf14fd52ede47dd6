package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type Database struct {
	DB     *gorm.DB
	driver config.DatabaseDriver
}

// NewDatabase opens the connection pool. It does not touch the schema;
// call Migrate once during startup.
func NewDatabase(cfg config.Database) (*Database, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Warn
	if cfg.LogSQL {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverSQLite
	}

	return &Database{DB: db, driver: driver}, nil
}

func dialectorFor(cfg config.Database) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("database path is not set")
		}
		return sqlite.Open(sqliteDSN(cfg.Path)), nil
	case config.DriverMySQL:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("database DSN is required for the mysql driver")
		}
		return mysql.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// sqliteDSN makes transactions take the write lock up front and wait for
// concurrent writers (the background audit log) instead of failing busy.
func sqliteDSN(path string) string {
	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	return path + separator + "_journal=WAL&_busy_timeout=5000&_txlock=immediate"
}

// Migrate creates the tables if they are absent. Safe to run repeatedly.
func (d *Database) Migrate() error {
	err := d.DB.AutoMigrate(
		&entities.Book{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Printf("Database schema is up to date (%s)", d.driver)
	return nil
}

// Driver reports which backend the connection was opened with.
func (d *Database) Driver() config.DatabaseDriver {
	return d.driver
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
