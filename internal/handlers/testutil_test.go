package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sharebox/sharebox/internal/config"
	"github.com/sharebox/sharebox/internal/database"
	"github.com/sharebox/sharebox/internal/middleware"
	"github.com/sharebox/sharebox/internal/models"
	"github.com/sharebox/sharebox/internal/services"
	"github.com/sharebox/sharebox/internal/storage"
	"github.com/sharebox/sharebox/pkg/uploadtoken"
	"github.com/sharebox/sharebox/pkg/utils"
	"gorm.io/gorm"
)

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	store *storage.MemoryStore
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	store := storage.NewMemoryStore("memory://test", uploadtoken.NewIssuer("handlers-test", time.Minute))
	svc := Services{
		Registry:   services.NewFileRegistry(db, store, services.NewURLCache(64, time.Minute, time.Hour)),
		Ledger:     services.NewContributionLedger(db),
		Accounting: services.NewStorageAccounting(db, config.StorageConfig{CapacityBytes: 1 << 20, WarnPercent: 80}),
	}

	app := fiber.New(fiber.Config{BodyLimit: 10 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	RegisterRoutes(app, db, svc)

	return &testEnv{app: app, db: db, store: store}
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string, name string) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Email:        &email,
		PasswordHash: hash,
		Role:         models.UserRoleUser,
	}
	if name != "" {
		user.Name = &name
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func dataMap(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %+v", body)
	}
	return data
}

func dataList(t *testing.T, body map[string]any) []any {
	t.Helper()
	data, ok := body["data"].([]any)
	if !ok {
		t.Fatalf("expected list data, got %+v", body)
	}
	return data
}

func listIDs(t *testing.T, body map[string]any) []string {
	t.Helper()
	var ids []string
	for _, item := range dataList(t, body) {
		entry, _ := item.(map[string]any)
		id, _ := entry["id"].(string)
		ids = append(ids, id)
	}
	return ids
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}

// commitBlob requests a slot and pushes content to it, returning the storage id.
func commitBlob(t *testing.T, env *testEnv, token, content, contentType string) string {
	t.Helper()

	slotResp := performRequest(t, env.app, http.MethodPost, "/api/uploads", nil, authHeaders(token))
	assertStatus(t, slotResp, http.StatusOK)
	slot := dataMap(t, decodeJSONMap(t, slotResp))
	slotToken, _ := slot["token"].(string)
	if slotToken == "" {
		t.Fatalf("expected slot token, got %+v", slot)
	}

	commitResp := performRequest(t, env.app, http.MethodPost, "/api/uploads/"+slotToken, strings.NewReader(content), map[string]string{
		"Content-Type": contentType,
	})
	assertStatus(t, commitResp, http.StatusCreated)
	storageID, _ := dataMap(t, decodeJSONMap(t, commitResp))["storageId"].(string)
	if storageID == "" {
		t.Fatal("expected storageId in commit response")
	}
	return storageID
}

// uploadFile runs the whole upload flow over HTTP and returns the file id.
func uploadFile(t *testing.T, env *testEnv, token, name, content string, public bool) string {
	t.Helper()

	storageID := commitBlob(t, env, token, content, "text/plain")
	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/files", map[string]any{
		"name":      name,
		"size":      len(content),
		"type":      "text/plain",
		"storageId": storageID,
		"isPublic":  public,
	}, authHeaders(token))
	assertStatus(t, resp, http.StatusCreated)

	id, _ := dataMap(t, decodeJSONMap(t, resp))["id"].(string)
	if id == "" {
		t.Fatal("expected file id in create response")
	}
	return id
}
