package adapter

import (
	"context"
	"io"
	"time"
)

// ObjectStorage abstracts the asset store. Paths are bucket-relative keys
// like "users/{userID}/uploads/{id}.jpg".
type ObjectStorage interface {
	Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// SignedURL mints a time-limited read URL for a private object.
	SignedURL(ctx context.Context, path string, expires time.Duration) (string, error)
}
