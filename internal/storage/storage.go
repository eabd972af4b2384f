// Package storage defines the object-storage collaborator images are
// forwarded to.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for object storage operations.
type Storage interface {
	// Upload stores an object and returns its canonical public URL.
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}

// UploadInput holds the parameters for uploading an object.
type UploadInput struct {
	Key         string
	ContentType string
	Size        int64
	Data        io.Reader

	// Format is the requested delivery encoding (e.g. "webp"). Backends
	// record it alongside the object; the stored bytes keep ContentType.
	Format string
}

// UploadResult holds the result of a successful upload.
type UploadResult struct {
	Key string
	URL string
}
