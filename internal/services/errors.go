package services

import "errors"

var (
	ErrUnauthenticated = errors.New("authentication required")
	// ErrNotFoundOrUnauthorized deliberately covers both a missing record and
	// one owned by someone else, so callers cannot tell whether the id exists.
	ErrNotFoundOrUnauthorized = errors.New("file not found or unauthorized")
	ErrUpstreamStore          = errors.New("storage service unavailable")
	ErrResourceUnavailable    = errors.New("file not available for download")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidUploadSlot      = errors.New("invalid or expired upload slot")
	ErrBlobAlreadyReferenced  = errors.New("storage id is already referenced by another file")
)
