package database

import (
	"fmt"

	"alumglass-backend/internal/model"
	"alumglass-backend/pkg/config"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB initializes the database connection with configuration and runs migrations
func InitDB(cfg *config.Config) error {
	var err error

	// Configure GORM logger
	logLevel := logger.Error
	if cfg.Server.Env == "development" {
		logLevel = logger.Info
	}

	// Configure Postgres options
	pgConfig := postgres.Config{
		DSN:                  cfg.Database.GetDSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	// Open connection
	db, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get generic database object SQL
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	// Set connection pool settings from config
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// Run migrations
	if err := Migrate(db); err != nil {
		return err
	}

	// Seed the dashboard admin if it doesn't exist yet
	if err := SeedAdmin(db, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	}

	return nil
}

// Migrate creates or updates all application tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Segment{},
		&model.Service{},
		&model.ServiceFeature{},
		&model.ServiceSpecification{},
		&model.ServiceBenefit{},
		&model.ServiceApplication{},
		&model.Project{},
		&model.Admin{},
	); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}

// SeedAdmin inserts the configured admin account with a bcrypt hash
// when no row with that email exists. Existing rows are left alone so
// a rotated password in the environment doesn't silently overwrite a
// manually managed one.
func SeedAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&model.Admin{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check admin account: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := model.Admin{Email: email, Password: string(hash)}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}

// SetDB overrides the database instance; used by tests to point the
// handlers at an in-memory database.
func SetDB(d *gorm.DB) {
	db = d
}
