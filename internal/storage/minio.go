package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sharebox/sharebox/internal/config"
	"github.com/sharebox/sharebox/pkg/logger"
	"github.com/sharebox/sharebox/pkg/uploadtoken"
)

const defaultRegion = "us-east-1"

type MinIOStore struct {
	client       *minio.Client
	publicClient *minio.Client // presigns against the externally reachable endpoint
	bucket       string
	urlExpiry    time.Duration
	slots        *uploadtoken.Issuer
}

func NewMinIOStore(cfg config.BlobConfig, slots *uploadtoken.Issuer) (*MinIOStore, error) {
	var creds *credentials.Credentials
	if cfg.AccessKey == "" {
		creds = credentials.NewIAM("")
	} else {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	publicClient := client
	if cfg.PublicEndpoint != "" && cfg.PublicEndpoint != cfg.Endpoint {
		// Presigning is offline, but only when the region is known up front.
		region := cfg.Region
		if region == "" {
			region = defaultRegion
		}
		publicClient, err = minio.New(cfg.PublicEndpoint, &minio.Options{
			Creds:  creds,
			Secure: cfg.UseSSL,
			Region: region,
		})
		if err != nil {
			return nil, err
		}
	}

	urlExpiry := cfg.URLExpiry
	if urlExpiry <= 0 {
		urlExpiry = DefaultURLExpiry
	}

	return &MinIOStore{
		client:       client,
		publicClient: publicClient,
		bucket:       cfg.Bucket,
		urlExpiry:    urlExpiry,
		slots:        slots,
	}, nil
}

func (m *MinIOStore) AllocateUploadSlot(_ context.Context) (UploadSlot, error) {
	token, tok, err := m.slots.Issue(newObjectKey())
	observe("allocate", err)
	if err != nil {
		return UploadSlot{}, err
	}
	return UploadSlot{Token: token, ExpiresAt: tok.Expiry()}, nil
}

func (m *MinIOStore) Commit(ctx context.Context, token string, r io.Reader, size int64, contentType string) (string, error) {
	tok, err := m.slots.Redeem(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}

	opts := minio.PutObjectOptions{ContentType: contentType}
	// Never replace an object a record may already point at.
	opts.SetMatchETagExcept("*")

	_, err = m.client.PutObject(ctx, m.bucket, tok.Key, r, size, opts)
	observe("commit", err)
	if isAlreadyExists(err) {
		logger.Warn("blob_commit_conflict", map[string]interface{}{
			"object_name": tok.Key,
			"bucket":      m.bucket,
		})
		return "", fmt.Errorf("%w: slot already committed", ErrInvalidSlot)
	}
	if err != nil {
		logger.Error("blob_commit_failed", err, map[string]interface{}{
			"object_name":  tok.Key,
			"size":         size,
			"content_type": contentType,
			"bucket":       m.bucket,
		})
		return "", err
	}

	logger.Info("blob_commit_success", map[string]interface{}{
		"object_name":  tok.Key,
		"size":         size,
		"content_type": contentType,
		"bucket":       m.bucket,
	})
	return tok.Key, nil
}

func (m *MinIOStore) Fetch(ctx context.Context, blobRef string) (*Blob, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, blobRef, minio.GetObjectOptions{})
	if err != nil {
		observe("fetch", err)
		logger.Error("blob_fetch_failed", err, map[string]interface{}{
			"object_name": blobRef,
			"bucket":      m.bucket,
		})
		return nil, err
	}

	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if isNotFound(err) {
			observe("fetch", nil)
			return nil, ErrBlobNotFound
		}
		observe("fetch", err)
		logger.Error("blob_fetch_stat_failed", err, map[string]interface{}{
			"object_name": blobRef,
			"bucket":      m.bucket,
		})
		return nil, err
	}

	observe("fetch", nil)
	return &Blob{Body: obj, Size: info.Size, ContentType: info.ContentType}, nil
}

func (m *MinIOStore) Exists(ctx context.Context, blobRef string) (bool, error) {
	if _, err := m.client.StatObject(ctx, m.bucket, blobRef, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			observe("exists", nil)
			return false, nil
		}
		observe("exists", err)
		return false, err
	}
	observe("exists", nil)
	return true, nil
}

func (m *MinIOStore) PresignDownloadURL(ctx context.Context, blobRef string) (string, error) {
	urlValue, err := m.publicClient.PresignedGetObject(ctx, m.bucket, blobRef, m.urlExpiry, nil)
	observe("presign", err)
	if err != nil {
		return "", err
	}
	return urlValue.String(), nil
}

func (m *MinIOStore) Delete(ctx context.Context, blobRef string) error {
	err := m.client.RemoveObject(ctx, m.bucket, blobRef, minio.RemoveObjectOptions{})
	observe("delete", err)
	if err != nil {
		logger.Error("blob_delete_failed", err, map[string]interface{}{
			"object_name": blobRef,
			"bucket":      m.bucket,
		})
		return err
	}
	logger.Info("blob_delete_success", map[string]interface{}{
		"object_name": blobRef,
		"bucket":      m.bucket,
	})
	return nil
}

func (m *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed creating bucket %s: %w", m.bucket, err)
	}
	return nil
}

func isAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	return minio.ToErrorResponse(err).Code == "PreconditionFailed"
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
