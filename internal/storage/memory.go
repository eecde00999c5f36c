package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sharebox/sharebox/pkg/logger"
	"github.com/sharebox/sharebox/pkg/uploadtoken"
)

type memoryBlob struct {
	data        []byte
	contentType string
}

// MemoryStore keeps payloads in process. It backs local development and the
// test suites.
type MemoryStore struct {
	mu      sync.RWMutex
	blobs   map[string]memoryBlob
	baseURL string
	slots   *uploadtoken.Issuer
}

func NewMemoryStore(baseURL string, slots *uploadtoken.Issuer) *MemoryStore {
	return &MemoryStore{
		blobs:   make(map[string]memoryBlob),
		baseURL: strings.TrimRight(baseURL, "/"),
		slots:   slots,
	}
}

func (s *MemoryStore) AllocateUploadSlot(_ context.Context) (UploadSlot, error) {
	token, tok, err := s.slots.Issue(newObjectKey())
	observe("allocate", err)
	if err != nil {
		return UploadSlot{}, err
	}
	return UploadSlot{Token: token, ExpiresAt: tok.Expiry()}, nil
}

func (s *MemoryStore) Commit(ctx context.Context, token string, r io.Reader, size int64, contentType string) (string, error) {
	tok, err := s.slots.Redeem(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}

	if size >= 0 {
		r = io.LimitReader(r, size)
	}
	data, err := io.ReadAll(r)
	observe("commit", err)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.blobs[tok.Key]; exists {
		return "", fmt.Errorf("%w: slot already committed", ErrInvalidSlot)
	}
	s.blobs[tok.Key] = memoryBlob{data: data, contentType: contentType}

	logger.Debug("blob_commit_success", map[string]interface{}{
		"object_name":  tok.Key,
		"size":         len(data),
		"content_type": contentType,
	})
	return tok.Key, nil
}

func (s *MemoryStore) Fetch(_ context.Context, blobRef string) (*Blob, error) {
	s.mu.RLock()
	blob, ok := s.blobs[blobRef]
	s.mu.RUnlock()
	observe("fetch", nil)
	if !ok {
		return nil, ErrBlobNotFound
	}
	return &Blob{
		Body:        io.NopCloser(bytes.NewReader(blob.data)),
		Size:        int64(len(blob.data)),
		ContentType: blob.contentType,
	}, nil
}

func (s *MemoryStore) Exists(_ context.Context, blobRef string) (bool, error) {
	observe("exists", nil)
	return s.Has(blobRef), nil
}

// PresignDownloadURL returns baseURL/blobRef. The URLs carry no expiry; the
// server serves them from /blobs when the memory backend is selected.
func (s *MemoryStore) PresignDownloadURL(_ context.Context, blobRef string) (string, error) {
	observe("presign", nil)
	return s.baseURL + "/" + blobRef, nil
}

func (s *MemoryStore) Delete(_ context.Context, blobRef string) error {
	s.mu.Lock()
	delete(s.blobs, blobRef)
	s.mu.Unlock()
	observe("delete", nil)
	return nil
}

func (s *MemoryStore) Has(blobRef string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[blobRef]
	return ok
}

// Put stores data under a fresh key without a slot, for seeding.
func (s *MemoryStore) Put(data []byte, contentType string) string {
	key := newObjectKey()
	s.mu.Lock()
	s.blobs[key] = memoryBlob{data: data, contentType: contentType}
	s.mu.Unlock()
	return key
}
