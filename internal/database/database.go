package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/sharebox/sharebox/internal/config"
	"github.com/sharebox/sharebox/internal/models"
	"github.com/sharebox/sharebox/pkg/logger"
	"github.com/sharebox/sharebox/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured database without migrating it.
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	}

	switch cfg.Driver {
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.Path), gormCfg)
		if err != nil {
			return nil, err
		}
		// sqlite serialises writers; one connection avoids "database is locked".
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.SSLMode,
		)
		return gorm.Open(postgres.Open(dsn), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func Connect(cfg config.DBConfig, admin config.AdminConfig) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := SeedAdminUser(db, admin); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.File{},
		&models.Contribution{},
	)
}

// SeedAdminUser creates the admin account on an empty users table.
func SeedAdminUser(db *gorm.DB, admin config.AdminConfig) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(admin.Password)
	if err != nil {
		return err
	}

	name := "System Admin"
	email := admin.Email
	user := models.User{
		Name:         &name,
		Email:        &email,
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
	}

	if err := db.Create(&user).Error; err != nil {
		return err
	}

	logger.Info("admin_user_seeded", map[string]interface{}{"email": email})
	return nil
}
