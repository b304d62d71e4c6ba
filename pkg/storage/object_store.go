package storage

import (
	"context"
	"io"
)

// ObjectStore provides access to uploaded file storage. URL returns the
// path or link a client should use to fetch the object back.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
