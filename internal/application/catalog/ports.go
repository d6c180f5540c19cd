package catalog

import (
	"context"
	"io"
)

// MediaStorage hosts product images. The key passed to Upload is the image
// publicId and is what Delete later receives.
// Implemented by the infrastructure layer (S3 or local disk).
type MediaStorage interface {
	// Upload stores body under key and returns the public URL
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)

	// Delete evicts a stored object
	Delete(ctx context.Context, publicID string) error
}

// ProductCache caches catalog read results
type ProductCache interface {
	// Get decodes a cached value into dest and reports whether it was found
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value under key
	Set(ctx context.Context, key string, value any) error

	// InvalidatePrefix removes every key starting with prefix
	InvalidatePrefix(ctx context.Context, prefix string) error
}
