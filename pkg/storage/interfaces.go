package storage

import (
	"context"
	"io"
)

// ObjectStore stores public objects such as event cover images.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}
