package interfaces

import (
	"context"
	"io"
)

// BlobStore keeps raw uploaded bytes addressed by key.
// Get and Delete of a missing key return an error wrapping common.ErrBlobNotFound.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
}
