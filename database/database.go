package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"catalog-backend/models"
	"catalog-backend/store"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=catalog port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Counter{},
		&models.Category{},
		&models.Inventory{},
		&models.Product{},
	); err != nil {
		return err
	}

	// Sibling names are unique case-insensitively. The service checks this
	// too; the expression index closes the race between check and insert.
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(`
			CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_sibling_name
			ON categories (COALESCE(parent_id, '00000000-0000-0000-0000-000000000000'::uuid), LOWER(name));
		`).Error; err != nil {
			return fmt.Errorf("failed to create sibling name index: %w", err)
		}
	}

	return nil
}

// CreateDefaultAdmin seeds the first admin account when ADMIN_EMAIL does not
// exist yet. The human id comes from the USER:ADMIN sequence.
func CreateDefaultAdmin(ctx context.Context, runner *TxRunner, log *zap.Logger) error {
	adminEmail := strings.ToLower(os.Getenv("ADMIN_EMAIL"))
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" {
		adminEmail = "admin@catalog.local"
	}
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	var existing models.User
	err := runner.DB.WithContext(ctx).Where("email = ?", adminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var admin models.User
	err = runner.Run(ctx, func(tx *gorm.DB) error {
		humanID, err := store.NewCounterStore(tx).NextID(ctx, "USER:ADMIN", models.HumanIDPrefix(models.RoleAdmin), store.DefaultPadding)
		if err != nil {
			return err
		}
		admin = models.User{
			HumanID:  humanID,
			Email:    adminEmail,
			Password: string(hashedPassword),
			Role:     models.RoleAdmin,
			Name:     "Admin User",
			IsActive: true,
		}
		return tx.Create(&admin).Error
	})
	if err != nil {
		return err
	}

	log.Info("default admin created", zap.String("email", adminEmail), zap.String("human_id", admin.HumanID))
	return nil
}
