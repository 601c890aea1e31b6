package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/om-chauahan/eventhub/internal/config"
	"github.com/om-chauahan/eventhub/internal/models"
	"github.com/om-chauahan/eventhub/pkg/bcrypt"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured database. SQLite connections are limited
// to a single writer so row updates inside transactions serialize. Driver
// errors are translated, so unique violations surface as gorm.ErrDuplicatedKey.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.URL)
	case "sqlite":
		dialector = sqlite.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// RunMigrations creates or updates the schema and fills the filter columns
// of events written before they existed.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Attendee{},
	); err != nil {
		return err
	}
	return backfillSearchFolds(db)
}

func backfillSearchFolds(db *gorm.DB) error {
	var batch []models.Event
	return db.Model(&models.Event{}).
		Where("city_fold = ? OR city_fold IS NULL", "").
		FindInBatches(&batch, 200, func(_ *gorm.DB, _ int) error {
			for i := range batch {
				e := &batch[i]
				e.FoldSearchText()
				err := db.Model(e).UpdateColumns(map[string]interface{}{
					"city_fold":        e.CityFold,
					"title_fold":       e.TitleFold,
					"description_fold": e.DescriptionFold,
				}).Error
				if err != nil {
					return fmt.Errorf("failed to backfill event %s: %w", e.ID, err)
				}
			}
			return nil
		}).Error
}

// SeedAdmin creates the bootstrap admin account unless a user with that
// email already exists. It does nothing when no admin email is configured.
func SeedAdmin(db *gorm.DB, admin config.AdminConfig, log *zap.Logger) error {
	if admin.Email == "" {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(admin.Email))

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hash := admin.Password
	if !bcrypt.IsHash(hash) {
		if hash, err = bcrypt.HashPassword(admin.Password); err != nil {
			return err
		}
	}
	user := models.User{
		Name:     admin.Name,
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	log.Info("seeded admin account", zap.String("email", email))
	return nil
}
