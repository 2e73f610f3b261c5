// Package storage holds the object storage abstraction used for document bytes
// and its adapters: a local filesystem, MinIO and AWS S3.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver names reported by Storage.Driver.
const (
	DriverLocal = "local"
	DriverMinIO = "minio"
	DriverS3    = "s3"
)

// ErrObjectNotFound is returned when a key does not exist in the backend.
var ErrObjectNotFound = errors.New("object not found")

// Scope places an object under its owning company and project where the backend uses it.
type Scope struct {
	CompanySlug string
	ProjectSlug string
}

// PutObjectOptions describe an object being uploaded.
// Size should be the exact number of bytes if known, or -1.
// Filename is only used for its extension; the adapter generates the key.
type PutObjectOptions struct {
	Filename    string
	ContentType string
	Size        int64
	Scope       Scope
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
// After Put, Size is the number of bytes the backend actually persisted.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// ResolvedURL is a URL a client can fetch an object from.
// ExpiresAt is nil when the URL does not expire.
type ResolvedURL struct {
	URL       string
	ExpiresAt *time.Time
}

// Removal tells whether Remove deleted something.
type Removal int

const (
	Removed Removal = iota
	AlreadyAbsent
)

func (r Removal) String() string {
	if r == AlreadyAbsent {
		return "already_absent"
	}
	return "removed"
}

// Storage is the object storage client used by the document service.
// Implementations are safe for concurrent use.
type Storage interface {
	// Put stores the bytes read from r under a freshly generated key.
	Put(ctx context.Context, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Resolve returns a URL for reading the object.
	Resolve(ctx context.Context, key string) (ResolvedURL, error)
	// Remove deletes the object. A missing key is not an error.
	Remove(ctx context.Context, key string) (Removal, error)
	// Driver names the backend for logs and metrics.
	Driver() string
}
