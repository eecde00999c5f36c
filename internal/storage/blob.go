package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultURLExpiry is the presigned URL lifetime when none is configured.
const DefaultURLExpiry = time.Hour

var (
	ErrBlobNotFound = errors.New("blob not found")
	ErrInvalidSlot  = errors.New("invalid upload slot")
)

var blobOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sharebox_blob_operations_total",
	Help: "Blob store operations by operation and result.",
}, []string{"operation", "result"})

// UploadSlot is a single-use write destination. The token is the capability:
// whoever holds it may commit exactly one payload before ExpiresAt.
type UploadSlot struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Blob struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// BlobStore is the opaque payload store. Blob references are only ever
// produced by Commit.
type BlobStore interface {
	AllocateUploadSlot(ctx context.Context) (UploadSlot, error)
	// Commit redeems the slot token and stores the payload. size may be -1
	// when unknown.
	Commit(ctx context.Context, token string, r io.Reader, size int64, contentType string) (string, error)
	Fetch(ctx context.Context, blobRef string) (*Blob, error)
	// Exists reports whether the blob is currently retrievable.
	Exists(ctx context.Context, blobRef string) (bool, error)
	// PresignDownloadURL signs a time-limited URL for blobRef. It does not
	// check that the blob exists.
	PresignDownloadURL(ctx context.Context, blobRef string) (string, error)
	// Delete is idempotent: deleting a missing blob succeeds.
	Delete(ctx context.Context, blobRef string) error
}

func newObjectKey() string {
	return "blobs/" + uuid.New().String()
}

func observe(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	blobOperationsTotal.WithLabelValues(operation, result).Inc()
}
