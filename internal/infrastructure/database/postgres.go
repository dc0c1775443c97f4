package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/config"
	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/pkg/utils"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool, log *zap.Logger) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("connected to PostgreSQL", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		// Profiles and access
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},

		// Catalog
		&entity.Category{},
		&entity.Supplier{},
		&entity.Product{},
		&entity.Customer{},

		// Sales and ledger
		&entity.Sale{},
		&entity.SaleItem{},
		&entity.CashBoxEntry{},
		&entity.CreditRecord{},
		&entity.ReceiptSequence{},
		&entity.StockMovement{},

		// System entities
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// SeedDefaultData seeds the database with default data (roles, permissions, admin user)
func SeedDefaultData(db *gorm.DB, log *zap.Logger) error {
	log.Info("seeding default data")

	permissions := []entity.Permission{
		{Name: entity.PermViewCatalog},
		{Name: entity.PermManageSales},
		{Name: entity.PermManageStock},
		{Name: entity.PermManageLedger},
	}

	for i := range permissions {
		var existing entity.Permission
		if err := db.Where("name = ?", permissions[i].Name).First(&existing).Error; err != nil {
			if err := db.Create(&permissions[i]).Error; err != nil {
				log.Warn("failed to create permission", zap.String("permission", permissions[i].Name), zap.Error(err))
			}
		}
	}

	// Reload permissions with IDs
	var allPermissions []entity.Permission
	if err := db.Find(&allPermissions).Error; err != nil {
		return fmt.Errorf("failed to load permissions: %w", err)
	}

	// Cashiers run the till end to end, so both roles carry every permission.
	for _, name := range []string{"admin", "cashier"} {
		var role entity.Role
		if err := db.Where("name = ?", name).First(&role).Error; err != nil {
			role = entity.Role{Name: name, Permissions: allPermissions}
			if err := db.Create(&role).Error; err != nil {
				log.Warn("failed to create role", zap.String("role", name), zap.Error(err))
			}
		}
	}

	adminEmail := viper.GetString("ADMIN_EMAIL")
	adminPassword := viper.GetString("ADMIN_PASSWORD")
	adminName := viper.GetString("ADMIN_NAME")
	if adminEmail == "" || adminPassword == "" {
		log.Info("default data seeding completed")
		return nil
	}

	var existingAdmin entity.User
	if err := db.Where("email = ?", adminEmail).First(&existingAdmin).Error; err == nil {
		log.Info("admin user already exists", zap.String("email", adminEmail))
		return nil
	}

	hashedPassword, err := utils.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	var adminRole entity.Role
	if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		return fmt.Errorf("failed to load admin role: %w", err)
	}

	if adminName == "" {
		adminName = "Store Admin"
	}
	firstName, lastName := splitName(adminName)
	adminUser := entity.User{
		ID:        uuid.New(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     adminEmail,
		Password:  hashedPassword,
		Roles:     []entity.Role{adminRole},
	}
	if err := db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	log.Info("admin user created", zap.String("email", adminEmail))
	return nil
}

func splitName(full string) (string, string) {
	for i, c := range full {
		if c == ' ' {
			return full[:i], full[i+1:]
		}
	}
	return full, ""
}
