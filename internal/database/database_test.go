package database

import (
	"testing"

	"github.com/sharebox/sharebox/internal/config"
	"github.com/sharebox/sharebox/internal/models"
	"github.com/sharebox/sharebox/pkg/utils"
)

func TestConnect_SQLite(t *testing.T) {
	db, err := Connect(
		config.DBConfig{Driver: "sqlite", Path: ":memory:"},
		config.AdminConfig{Email: "root@example.com", Password: "pw-123456"},
	)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, table := range []string{"users", "files", "contributions"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("expected table %s to exist", table)
		}
	}

	var admin models.User
	if err := db.Where("role = ?", models.UserRoleAdmin).First(&admin).Error; err != nil {
		t.Fatalf("expected seeded admin, got %v", err)
	}
	if admin.Email == nil || *admin.Email != "root@example.com" {
		t.Errorf("unexpected admin email %v", admin.Email)
	}
	if !utils.CheckPassword("pw-123456", admin.PasswordHash) {
		t.Error("expected admin password to match")
	}

	t.Run("seeding is skipped when users exist", func(t *testing.T) {
		if err := SeedAdminUser(db, config.AdminConfig{Email: "second@example.com", Password: "x"}); err != nil {
			t.Fatalf("SeedAdminUser failed: %v", err)
		}
		var count int64
		db.Model(&models.User{}).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 user, got %d", count)
		}
	})
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(config.DBConfig{Driver: "mysql"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
