// database.go - Handles database connection and setup

package database // Declares the package name

import ( // Import required packages
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cafesantander/config" // Project config
	"cafesantander/models" // Table models

	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/driver/postgres"    // Postgres driver for GORM
	"gorm.io/driver/sqlite"      // SQLite driver for GORM
	"gorm.io/gorm"               // GORM ORM
	"gorm.io/gorm/logger"        // GORM logger, routed to slog
)

var DB *gorm.DB // Global variable to hold the database connection (pointer to gorm.DB)

// Open connects to the configured store, sizes the pool and migrates the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN())
	case "mysql":
		dialector = mysql.Open(cfg.DSN())
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true, // Unique violations surface as gorm.ErrDuplicatedKey
		Logger: logger.New(slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: pool: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		// SQLite has a single writer; callers queue on the pool instead of failing with SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the four storefront tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Cart{}, &models.CartItem{}); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}

func Connect(cfg *config.Config) error { // Connect opens the database and runs migrations
	var err error
	DB, err = Open(cfg) // Open the configured store
	if err != nil {     // If error, return it
		return err
	}

	// Create default admin user if configured
	return createDefaultAdmin(DB, cfg)
}

// createDefaultAdmin - Creates a default admin user if configured and none exists
// This uses environment variables for security instead of hardcoded credentials
func createDefaultAdmin(db *gorm.DB, cfg *config.Config) error {
	// Only create admin if explicitly configured
	if !cfg.CreateAdmin {
		return nil
	}
	if cfg.AdminPassword == "" {
		return errors.New("database: CREATE_ADMIN needs ADMIN_PASSWORD")
	}

	// Check if any admin user exists
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	// Create default admin user using config values
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := models.User{
		Email:    cfg.AdminEmail,
		Password: string(hash),
		Name:     "Admin",
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}
	slog.Info("default admin created", "email", adminUser.Email)
	return nil
}
