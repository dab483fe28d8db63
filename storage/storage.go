package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileInfo contains metadata about a stored object.
type FileInfo struct {
	Path         string
	Size         int64
	LastModified time.Time
}

// Storage holds short-lived scratch objects. Keys are relative to the
// backend's root.
type Storage interface {
	// Upload writes reader to key. It fails if key already exists.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	// List returns every object whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]FileInfo, error)

	// LocalPath returns the filesystem path of key, for consumers such as
	// inference engines that open files by path.
	LocalPath(key string) (string, error)
}

// NewKey returns a collision-free scratch key ending in ext (".wav", ".bin").
func NewKey(ext string) string {
	return uuid.NewString() + ext
}
