package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sharebox/sharebox/internal/models"
	"github.com/sharebox/sharebox/internal/storage"
	"github.com/sharebox/sharebox/pkg/logger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	anonymousUploader  = "Anonymous"
	resolveConcurrency = 8
)

// FileRegistry owns file records and brokers every blob store access through
// the blob reference stored on a record.
type FileRegistry struct {
	db    *gorm.DB
	store storage.BlobStore
	urls  *URLCache
}

// NewFileRegistry wires the registry. urls may be nil to disable caching.
func NewFileRegistry(db *gorm.DB, store storage.BlobStore, urls *URLCache) *FileRegistry {
	return &FileRegistry{db: db, store: store, urls: urls}
}

type CreateFileInput struct {
	Name        string
	Size        int64
	Type        string
	BlobRef     string
	IsPublic    *bool
	Tags        []string
	Description *string
}

type ListOptions struct {
	// Query filters by case-insensitive name substring.
	Query string
}

// OwnedFile is a record with its download URL resolved at read time. URL is
// nil when the blob is not currently retrievable.
type OwnedFile struct {
	models.File
	URL               *string `json:"url"`
	DownloadAvailable bool    `json:"downloadAvailable"`
}

type PublicFile struct {
	OwnedFile
	UploaderName string `json:"uploaderName"`
}

func (r *FileRegistry) RequestUploadSlot(ctx context.Context, caller *models.User) (storage.UploadSlot, error) {
	if err := requireCaller(caller); err != nil {
		return storage.UploadSlot{}, err
	}

	slot, err := r.store.AllocateUploadSlot(ctx)
	if err != nil {
		logger.ErrorWithUser(caller.ID.String(), "upload_slot_failed", err, nil)
		return storage.UploadSlot{}, fmt.Errorf("%w: allocate upload slot", ErrUpstreamStore)
	}

	logger.InfoWithUser(caller.ID.String(), "upload_slot_issued", map[string]interface{}{
		"expires_at": slot.ExpiresAt,
	})
	return slot, nil
}

// CommitUpload stores a payload against a slot token. The token itself is
// the capability, so no caller is required.
func (r *FileRegistry) CommitUpload(ctx context.Context, token string, body io.Reader, size int64, contentType string) (string, error) {
	if strings.TrimSpace(contentType) == "" {
		contentType = models.DefaultMimeType
	}

	blobRef, err := r.store.Commit(ctx, token, body, size, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidSlot) {
			return "", fmt.Errorf("%w: %v", ErrInvalidUploadSlot, err)
		}
		logger.Error("upload_commit_failed", err, map[string]interface{}{
			"size":         size,
			"content_type": contentType,
		})
		return "", fmt.Errorf("%w: commit upload", ErrUpstreamStore)
	}

	return blobRef, nil
}

// CreateFileRecord registers an already-committed blob as a file owned by
// caller. Size and blob provenance are taken as reported.
func (r *FileRegistry) CreateFileRecord(ctx context.Context, caller *models.User, in CreateFileInput) (*models.File, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	blobRef := strings.TrimSpace(in.BlobRef)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case in.Size < 0:
		return nil, fmt.Errorf("%w: size must not be negative", ErrInvalidInput)
	case blobRef == "":
		return nil, fmt.Errorf("%w: storage id is required", ErrInvalidInput)
	}

	mimeType := strings.TrimSpace(in.Type)
	if mimeType == "" {
		mimeType = models.DefaultMimeType
	}

	var description *string
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			description = &d
		}
	}

	referenced, err := r.blobReferenced(ctx, blobRef)
	if err != nil {
		return nil, err
	}
	if referenced {
		return nil, ErrBlobAlreadyReferenced
	}

	file := &models.File{
		Name:        name,
		Size:        in.Size,
		MimeType:    mimeType,
		BlobRef:     blobRef,
		OwnerID:     caller.ID,
		IsPublic:    in.IsPublic != nil && *in.IsPublic,
		Tags:        models.NormalizeTags(in.Tags),
		Description: description,
	}

	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		// Lost a race on the unique blob_ref index.
		if referenced, _ := r.blobReferenced(ctx, blobRef); referenced {
			return nil, ErrBlobAlreadyReferenced
		}
		return nil, err
	}

	filesCreatedTotal.Inc()
	logger.InfoWithUser(caller.ID.String(), "file_created", map[string]interface{}{
		"file_id":   file.ID,
		"name":      file.Name,
		"size":      file.Size,
		"is_public": file.IsPublic,
	})
	return file, nil
}

func (r *FileRegistry) blobReferenced(ctx context.Context, blobRef string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.File{}).Where("blob_ref = ?", blobRef).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListOwnFiles returns every record owned by caller regardless of
// visibility. An unauthenticated caller gets an empty list, not an error.
func (r *FileRegistry) ListOwnFiles(ctx context.Context, caller *models.User, opts ListOptions) ([]OwnedFile, error) {
	if caller == nil {
		return []OwnedFile{}, nil
	}

	query := r.db.WithContext(ctx).Where("owner_id = ?", caller.ID)
	var files []models.File
	if err := applyNameFilter(query, opts.Query).Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, err
	}

	return r.resolveURLs(ctx, files)
}

// ListPublicFiles returns every public record to any caller, anonymous
// included.
func (r *FileRegistry) ListPublicFiles(ctx context.Context, opts ListOptions) ([]PublicFile, error) {
	query := r.db.WithContext(ctx).Where("is_public = ?", true)
	var files []models.File
	if err := applyNameFilter(query, opts.Query).Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, err
	}

	resolved, err := r.resolveURLs(ctx, files)
	if err != nil {
		return nil, err
	}

	names, err := r.uploaderNames(ctx, files)
	if err != nil {
		return nil, err
	}

	result := make([]PublicFile, 0, len(resolved))
	for _, f := range resolved {
		name := names[f.OwnerID]
		if name == "" {
			name = anonymousUploader
		}
		result = append(result, PublicFile{OwnedFile: f, UploaderName: name})
	}
	return result, nil
}

// GetFile returns one record if caller may read it.
func (r *FileRegistry) GetFile(ctx context.Context, caller *models.User, id uuid.UUID) (*OwnedFile, error) {
	file, err := r.readableFile(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	url, err := r.resolveURL(ctx, file.BlobRef)
	if err != nil {
		return nil, err
	}
	return newOwnedFile(*file, url), nil
}

// OpenDownload streams the blob behind a readable record. The caller must
// close the returned body.
func (r *FileRegistry) OpenDownload(ctx context.Context, caller *models.User, id uuid.UUID) (*models.File, *storage.Blob, error) {
	file, err := r.readableFile(ctx, caller, id)
	if err != nil {
		return nil, nil, err
	}

	blob, err := r.store.Fetch(ctx, file.BlobRef)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, nil, ErrResourceUnavailable
		}
		logger.Error("file_download_failed", err, map[string]interface{}{"file_id": file.ID})
		return nil, nil, fmt.Errorf("%w: fetch blob", ErrUpstreamStore)
	}
	return file, blob, nil
}

// DeleteFile removes the blob and then the record. The blob goes first: a
// failure between the two steps leaves an orphaned blob, never a record
// pointing at nothing.
func (r *FileRegistry) DeleteFile(ctx context.Context, caller *models.User, id uuid.UUID) error {
	if err := requireCaller(caller); err != nil {
		return err
	}

	var file models.File
	if err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, caller.ID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFoundOrUnauthorized
		}
		return err
	}

	if err := r.store.Delete(ctx, file.BlobRef); err != nil {
		logger.ErrorWithUser(caller.ID.String(), "file_blob_delete_failed", err, map[string]interface{}{
			"file_id": file.ID,
		})
		return fmt.Errorf("%w: delete blob", ErrUpstreamStore)
	}
	r.urls.Delete(file.BlobRef)

	result := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, caller.ID).Delete(&models.File{})
	if result.Error != nil {
		logger.ErrorWithUser(caller.ID.String(), "file_record_delete_failed", result.Error, map[string]interface{}{
			"file_id":  file.ID,
			"blob_ref": file.BlobRef,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFoundOrUnauthorized
	}

	filesDeletedTotal.Inc()
	logger.InfoWithUser(caller.ID.String(), "file_deleted", map[string]interface{}{
		"file_id": file.ID,
		"name":    file.Name,
	})
	return nil
}

func (r *FileRegistry) readableFile(ctx context.Context, caller *models.User, id uuid.UUID) (*models.File, error) {
	var file models.File
	if err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundOrUnauthorized
		}
		return nil, err
	}
	if !canRead(caller, &file) {
		return nil, ErrNotFoundOrUnauthorized
	}
	return &file, nil
}

// resolveURL checks the blob on every call and only reuses a cached
// signature. A missing blob resolves to "" and drops its cache entry.
func (r *FileRegistry) resolveURL(ctx context.Context, blobRef string) (string, error) {
	exists, err := r.store.Exists(ctx, blobRef)
	if err != nil {
		logger.Error("download_url_resolve_failed", err, map[string]interface{}{"blob_ref": blobRef})
		return "", fmt.Errorf("%w: resolve download url", ErrUpstreamStore)
	}
	if !exists {
		r.urls.Delete(blobRef)
		return "", nil
	}

	if url, ok := r.urls.Get(blobRef); ok {
		return url, nil
	}

	url, err := r.store.PresignDownloadURL(ctx, blobRef)
	if err != nil {
		logger.Error("download_url_presign_failed", err, map[string]interface{}{"blob_ref": blobRef})
		return "", fmt.Errorf("%w: presign download url", ErrUpstreamStore)
	}
	r.urls.Set(blobRef, url)
	return url, nil
}

// resolveURLs resolves download URLs for files concurrently, keeping order.
func (r *FileRegistry) resolveURLs(ctx context.Context, files []models.File) ([]OwnedFile, error) {
	urls := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i := range files {
		g.Go(func() error {
			url, err := r.resolveURL(gctx, files[i].BlobRef)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]OwnedFile, 0, len(files))
	for i, f := range files {
		result = append(result, *newOwnedFile(f, urls[i]))
	}
	return result, nil
}

func (r *FileRegistry) uploaderNames(ctx context.Context, files []models.File) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string)
	if len(files) == 0 {
		return names, nil
	}

	seen := make(map[uuid.UUID]struct{}, len(files))
	ids := make([]uuid.UUID, 0, len(files))
	for _, f := range files {
		if _, ok := seen[f.OwnerID]; ok {
			continue
		}
		seen[f.OwnerID] = struct{}{}
		ids = append(ids, f.OwnerID)
	}

	var users []models.User
	if err := r.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		names[users[i].ID] = users[i].DisplayName()
	}
	return names, nil
}

func newOwnedFile(file models.File, url string) *OwnedFile {
	owned := &OwnedFile{File: file}
	if url != "" {
		owned.URL = &url
		owned.DownloadAvailable = true
	}
	return owned
}

func applyNameFilter(query *gorm.DB, q string) *gorm.DB {
	q = strings.TrimSpace(q)
	if q == "" {
		return query
	}
	return query.Where("LOWER(name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(q))+"%")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
