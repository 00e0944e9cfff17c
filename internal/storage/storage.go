// Package storage contains the file store used by the media service.
// Keys are flat object names ({uuid}{ext}); a backend never interprets them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"marketapi/internal/config"
)

// ErrObjectNotFound is returned by Get when no object exists under the key.
var ErrObjectNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, -1 otherwise.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the file store interface. Implementations are safe for concurrent use.
type Storage interface {
	// Put writes an object under key. A failed Put leaves no partial object behind.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// Driver names accepted by New.
const (
	DriverLocal = "local"
	DriverMinIO = "minio"
)

// New builds the backend selected by cfg.Driver.
func New(cfg config.MediaConfig, mc config.MinIOConfig) (Storage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverLocal:
		return NewLocal(cfg.UploadDir)
	case DriverMinIO:
		return NewMinIO(mc)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func validKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("invalid object key %q", key)
	}
	return nil
}
