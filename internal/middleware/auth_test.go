package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/sharebox/sharebox/internal/models"
	"github.com/sharebox/sharebox/pkg/utils"
	"gorm.io/gorm"
)

func setupMiddlewareTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.ConfigureJWT("middleware-test-secret", 24)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed automigrating: %v", err)
	}

	return db
}

func createMiddlewareTestUser(t *testing.T, db *gorm.DB, name string) (*models.User, string) {
	t.Helper()
	user := &models.User{Name: &name, PasswordHash: "hash", Role: models.UserRoleUser}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating user: %v", err)
	}
	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating token: %v", err)
	}
	return user, token
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("failed decoding body: %v body=%q", err, string(raw))
	}
	return body
}

func whoAmI(c *fiber.Ctx) error {
	user := GetCurrentUser(c)
	if user == nil {
		return c.JSON(fiber.Map{"name": nil, "userID": c.Locals(userIDKey)})
	}
	return c.JSON(fiber.Map{"name": user.DisplayName(), "userID": c.Locals(userIDKey)})
}

func TestRequireAuth(t *testing.T) {
	db := setupMiddlewareTestDB(t)
	auth := NewAuthMiddleware(db)
	user, token := createMiddlewareTestUser(t, db, "Required")

	app := fiber.New()
	app.Get("/protected", auth.RequireAuth, whoAmI)

	tests := []struct {
		name      string
		header    string
		wantError string
	}{
		{"missing authorization header", "", "missing authorization header"},
		{"invalid authorization format", "Basic somecreds", "invalid authorization format"},
		{"invalid JWT token", "Bearer invalid-jwt-token", "invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, _ := app.Test(req, 5000)
			body := decodeBody(t, resp)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", resp.StatusCode)
			}
			if body["error"] != tt.wantError {
				t.Fatalf("expected error %q, got %v", tt.wantError, body["error"])
			}
		})
	}

	t.Run("valid JWT token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, _ := app.Test(req, 5000)
		body := decodeBody(t, resp)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if body["name"] != "Required" {
			t.Fatalf("expected name Required, got %v", body["name"])
		}
		if body["userID"] != user.ID.String() {
			t.Fatalf("expected userID local %s, got %v", user.ID, body["userID"])
		}
	})

	t.Run("JWT for deleted user", func(t *testing.T) {
		deleted, deletedToken := createMiddlewareTestUser(t, db, "Deleted")
		db.Unscoped().Delete(deleted)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+deletedToken)
		resp, _ := app.Test(req, 5000)
		body := decodeBody(t, resp)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
		if body["error"] != "user not found" {
			t.Fatalf("expected user not found, got %v", body["error"])
		}
	})
}

func TestOptionalAuth(t *testing.T) {
	db := setupMiddlewareTestDB(t)
	auth := NewAuthMiddleware(db)
	_, token := createMiddlewareTestUser(t, db, "Optional")

	app := fiber.New()
	app.Get("/maybe", auth.OptionalAuth, whoAmI)

	t.Run("anonymous passes through", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/maybe", nil), 5000)
		body := decodeBody(t, resp)
		if resp.StatusCode != http.StatusOK || body["name"] != nil {
			t.Fatalf("expected anonymous 200, got %d %v", resp.StatusCode, body)
		}
	})

	t.Run("invalid token is treated as anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		resp, _ := app.Test(req, 5000)
		body := decodeBody(t, resp)
		if resp.StatusCode != http.StatusOK || body["name"] != nil {
			t.Fatalf("expected anonymous 200, got %d %v", resp.StatusCode, body)
		}
	})

	t.Run("valid token resolves the user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, _ := app.Test(req, 5000)
		body := decodeBody(t, resp)
		if body["name"] != "Optional" {
			t.Fatalf("expected name Optional, got %v", body["name"])
		}
	})
}

func TestGetCurrentUser_WrongType(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals(currentUserKey, "not-a-user")
		if GetCurrentUser(c) != nil {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendStatus(http.StatusOK)
	})

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), 5000)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected nil user for wrong type, got status %d", resp.StatusCode)
	}
}
