// Package storage keeps rendered report files and signs their download links.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned when a stored export no longer exists.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is implemented by every export backend.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
