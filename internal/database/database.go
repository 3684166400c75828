package database

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/welldanyogia/webrana-voicemail-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connection pool configuration
const (
	DefaultMaxIdleConns    = 10
	DefaultMaxOpenConns    = 100
	DefaultConnMaxLifetime = time.Hour
	DefaultConnMaxIdleTime = 10 * time.Minute
)

// Connect opens the database named by databaseURL.
// postgres:// and postgresql:// URLs (or key=value DSNs) use PostgreSQL;
// sqlite: and file: URLs or *.db paths use SQLite.
func Connect(databaseURL string) (*gorm.DB, error) {
	return ConnectWithConfig(databaseURL, DefaultMaxIdleConns, DefaultMaxOpenConns, DefaultConnMaxLifetime, DefaultConnMaxIdleTime)
}

// ConnectWithConfig establishes a connection with custom pool configuration
func ConnectWithConfig(databaseURL string, maxIdleConns, maxOpenConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*gorm.DB, error) {
	dialector, isSQLite := dialectorFor(databaseURL)

	// Validate SSL mode in production
	if !isSQLite && os.Getenv("APP_ENV") == "production" {
		if err := validateSSLMode(databaseURL); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// SQLite serializes writers; one connection also keeps in-memory databases alive
	if isSQLite {
		maxIdleConns, maxOpenConns = 1, 1
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	slog.Info("Connected to database successfully", slog.Bool("sqlite", isSQLite))
	return db, nil
}

// dialectorFor picks the gorm driver for a database URL
func dialectorFor(databaseURL string) (gorm.Dialector, bool) {
	switch {
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return sqlite.Open(sqliteDSN(strings.TrimPrefix(databaseURL, "sqlite://"))), true
	case strings.HasPrefix(databaseURL, "sqlite:"):
		return sqlite.Open(sqliteDSN(strings.TrimPrefix(databaseURL, "sqlite:"))), true
	case strings.HasPrefix(databaseURL, "file:"), strings.HasSuffix(databaseURL, ".db"):
		return sqlite.Open(sqliteDSN(databaseURL)), true
	default:
		return postgres.Open(databaseURL), false
	}
}

// sqliteDSN turns on foreign key enforcement, which SQLite leaves off per connection
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=1"
	}
	return dsn + "?_foreign_keys=1"
}

// validateSSLMode ensures SSL is enabled in production
func validateSSLMode(databaseURL string) error {
	if strings.Contains(databaseURL, "sslmode=disable") {
		return fmt.Errorf("SSL mode cannot be disabled in production")
	}
	return nil
}

// Migrate creates the accounts and voicemails tables if they are missing.
// It is safe to run on every start; failures are returned unchanged for the
// caller to treat as fatal.
func Migrate(db *gorm.DB) error {
	slog.Info("Ensuring database schema...")

	err := db.AutoMigrate(
		&models.Account{},
		&models.Voicemail{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Database schema ready")
	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
