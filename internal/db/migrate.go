package db

import (
	"fmt"                         // Error wrapping
	"leaderboard/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM logger
)

// mysqlTableOptions keeps username comparisons case-sensitive
const mysqlTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"

// Open connects to MySQL with duplicate-key errors translated to gorm.ErrDuplicatedKey
func Open(dsn string, isProd bool) (*gorm.DB, error) {
	level := logger.Info // Verbose SQL logging in development
	if isProd {
		level = logger.Warn
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,                          // Map driver errors to gorm errors
		Logger:         logger.Default.LogMode(level), // SQL log level
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "mysql" {
		db = db.Set("gorm:table_options", mysqlTableOptions) // Binary collation on MySQL
	}
	// AutoMigrate will create tables, missing constraints, columns and indexes
	if err := db.AutoMigrate(&domain.User{}, &domain.Contribution{}, &domain.LoginLog{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
