package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/sharebox/sharebox/internal/config"
	"github.com/sharebox/sharebox/pkg/uploadtoken"
)

func TestNewMinIOStore(t *testing.T) {
	slots := uploadtoken.NewIssuer("minio-test", time.Minute)

	t.Run("uses a separate presign client for a distinct public endpoint", func(t *testing.T) {
		store, err := NewMinIOStore(config.BlobConfig{
			Endpoint:       "minio:9000",
			PublicEndpoint: "files.example.com",
			AccessKey:      "key",
			SecretKey:      "secret",
			Bucket:         "sharebox",
		}, slots)
		if err != nil {
			t.Fatalf("NewMinIOStore failed: %v", err)
		}
		if store.publicClient == store.client {
			t.Error("expected distinct public client")
		}
		if store.urlExpiry != time.Hour {
			t.Errorf("expected default url expiry 1h, got %v", store.urlExpiry)
		}
	})

	t.Run("reuses client when endpoints match", func(t *testing.T) {
		store, err := NewMinIOStore(config.BlobConfig{
			Endpoint:       "minio:9000",
			PublicEndpoint: "minio:9000",
			Bucket:         "sharebox",
			URLExpiry:      5 * time.Minute,
		}, slots)
		if err != nil {
			t.Fatalf("NewMinIOStore failed: %v", err)
		}
		if store.publicClient != store.client {
			t.Error("expected shared client")
		}
	})

	t.Run("slot allocation does not touch the network", func(t *testing.T) {
		store, err := NewMinIOStore(config.BlobConfig{Endpoint: "minio:9000", AccessKey: "k", SecretKey: "s"}, slots)
		if err != nil {
			t.Fatalf("NewMinIOStore failed: %v", err)
		}
		slot, err := store.AllocateUploadSlot(context.Background())
		if err != nil || slot.Token == "" {
			t.Fatalf("expected slot, got %+v (err %v)", slot, err)
		}
	})

	t.Run("commit with a bad token fails before upload", func(t *testing.T) {
		store, _ := NewMinIOStore(config.BlobConfig{Endpoint: "minio:9000", AccessKey: "k", SecretKey: "s"}, slots)
		if _, err := store.Commit(context.Background(), "bogus.token", nil, 0, ""); !errors.Is(err, ErrInvalidSlot) {
			t.Fatalf("expected ErrInvalidSlot, got %v", err)
		}
	})
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no such key", minio.ErrorResponse{Code: "NoSuchKey"}, true},
		{"head not found", minio.ErrorResponse{Code: "NotFound"}, true},
		{"access denied", minio.ErrorResponse{Code: "AccessDenied"}, false},
		{"plain error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNotFound(tt.err); got != tt.want {
				t.Errorf("isNotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsAlreadyExists(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"precondition failed", minio.ErrorResponse{Code: "PreconditionFailed", StatusCode: 412}, true},
		{"no such key", minio.ErrorResponse{Code: "NoSuchKey"}, false},
		{"plain error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAlreadyExists(tt.err); got != tt.want {
				t.Errorf("isAlreadyExists(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
