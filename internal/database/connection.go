// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/license-server/internal/config"
	"github.com/javajoker/license-server/internal/models"
)

func gormConfig(logLevel string) *gorm.Config {
	// Configure GORM logger
	level := logger.Info
	switch logLevel {
	case "silent":
		level = logger.Silent
	case "error":
		level = logger.Error
	case "warn":
		level = logger.Warn
	}

	return &gorm.Config{
		Logger: logger.Default.LogMode(level),
	}
}

// Initialize opens the license store.
func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := open(postgres.Open(cfg.DSN()), cfg, "license store")
	if err != nil {
		return nil, err
	}

	logrus.Info("Database connection established successfully")
	return db, nil
}

// InitializeDirectory opens the read-only user directory database.
func InitializeDirectory(cfg config.DirectoryConfig) (*gorm.DB, error) {
	dialector := mysql.Open(cfg.MySQLDSN())
	if cfg.Driver == "postgres" {
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := open(dialector, cfg.DatabaseConfig, "user directory")
	if err != nil {
		return nil, err
	}

	logrus.Info("User directory connection established successfully")
	return db, nil
}

func open(dialector gorm.Dialector, cfg config.DatabaseConfig, name string) (*gorm.DB, error) {
	// Connect to database
	db, err := gorm.Open(dialector, gormConfig(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", name, err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping %s: %w", name, err)
	}

	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed successfully")
	}
}

// RunMigrations creates the license store schema. The user directory is
// owned by another system and is never migrated.
func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.License{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	createIndexes(db)

	logrus.Info("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) {
	indexes := []string{
		// License indexes
		"CREATE INDEX IF NOT EXISTS idx_licenses_user_swid_hw ON licenses(user_id, swid, hardware_id)",
		"CREATE INDEX IF NOT EXISTS idx_licenses_expire_date ON licenses(expire_date)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// Continue with other indexes instead of failing completely
			logrus.WithError(err).WithField("index", index).Warn("Failed to create index")
		}
	}
}
