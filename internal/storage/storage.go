// internal/storage/storage.go
package storage

import (
	"context"
	"io"
)

// Store is the blob storage consumed by the video and analysis services.
// Paths are always a (directory, filename) pair relative to the store root.
type Store interface {
	// Save writes the blob and returns its store-relative path.
	Save(ctx context.Context, dir, name string, r io.Reader, size int64, contentType string) (string, error)
	// Fetch materializes the blob at destPath on the local filesystem.
	Fetch(ctx context.Context, dir, name, destPath string) error
	// Delete removes the blob. A missing blob returns (false, nil).
	Delete(ctx context.Context, dir, name string) (bool, error)
	Exists(ctx context.Context, dir, name string) (bool, error)
	// List returns the filenames directly under dir.
	List(ctx context.Context, dir string) ([]string, error)
	// LocalPath reports the absolute filesystem path of the blob when the
	// backend keeps blobs on local disk.
	LocalPath(dir, name string) (string, bool)
}
