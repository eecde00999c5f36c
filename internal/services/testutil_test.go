package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sharebox/sharebox/internal/database"
	"github.com/sharebox/sharebox/internal/models"
	"github.com/sharebox/sharebox/internal/storage"
	"github.com/sharebox/sharebox/pkg/uploadtoken"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	store    *storage.MemoryStore
	registry *FileRegistry
	ledger   *ContributionLedger
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

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
	return db
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	store := storage.NewMemoryStore("memory://test", uploadtoken.NewIssuer("services-test", time.Minute))
	return &testEnv{
		db:       db,
		store:    store,
		registry: NewFileRegistry(db, store, NewURLCache(64, time.Minute, time.Hour)),
		ledger:   NewContributionLedger(db),
	}
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	user := &models.User{PasswordHash: "hash", Role: models.UserRoleUser}
	if name != "" {
		email := strings.ToLower(name) + "@test.com"
		user.Name = &name
		user.Email = &email
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}
	return user
}

// uploadFile runs the full slot, commit and create flow for caller.
func uploadFile(t *testing.T, env *testEnv, caller *models.User, name string, size int, public bool) *models.File {
	t.Helper()
	ctx := context.Background()

	slot, err := env.registry.RequestUploadSlot(ctx, caller)
	if err != nil {
		t.Fatalf("RequestUploadSlot failed: %v", err)
	}
	payload := strings.Repeat("x", size)
	blobRef, err := env.registry.CommitUpload(ctx, slot.Token, strings.NewReader(payload), int64(size), "text/plain")
	if err != nil {
		t.Fatalf("CommitUpload failed: %v", err)
	}

	file, err := env.registry.CreateFileRecord(ctx, caller, CreateFileInput{
		Name:     name,
		Size:     int64(size),
		Type:     "text/plain",
		BlobRef:  blobRef,
		IsPublic: &public,
	})
	if err != nil {
		t.Fatalf("CreateFileRecord failed: %v", err)
	}
	return file
}

func ownedIDs(files []OwnedFile) map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool, len(files))
	for _, f := range files {
		ids[f.ID] = true
	}
	return ids
}

func publicIDs(files []PublicFile) map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool, len(files))
	for _, f := range files {
		ids[f.ID] = true
	}
	return ids
}

// failingStore wraps a BlobStore and fails selected operations.
type failingStore struct {
	storage.BlobStore
	failDelete  bool
	failResolve bool
	failFetch   bool
}

var errStoreDown = errors.New("store down")

func (s *failingStore) Delete(ctx context.Context, blobRef string) error {
	if s.failDelete {
		return errStoreDown
	}
	return s.BlobStore.Delete(ctx, blobRef)
}

func (s *failingStore) Exists(ctx context.Context, blobRef string) (bool, error) {
	if s.failResolve {
		return false, errStoreDown
	}
	return s.BlobStore.Exists(ctx, blobRef)
}

func (s *failingStore) Fetch(ctx context.Context, blobRef string) (*storage.Blob, error) {
	if s.failFetch {
		return nil, errStoreDown
	}
	return s.BlobStore.Fetch(ctx, blobRef)
}
