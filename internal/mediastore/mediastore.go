package mediastore

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("media not found")

// MediaStore serves the local files referenced by catalog items.
type MediaStore interface {
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
}
