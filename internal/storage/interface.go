package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Open when nothing is stored at the path.
	ErrNotFound = errors.New("object not found")
	// ErrAlreadyExists is returned by CreateExclusive when another writer
	// created the path first.
	ErrAlreadyExists = errors.New("object already exists")
)

// Reader reads stored objects by path.
type Reader interface {
	Open(ctx context.Context, path string) ([]byte, error)
}

// Store is durable, create-only storage for rendered images. A path is
// written at most once; concurrent writers for the same path see exactly
// one success and ErrAlreadyExists for the rest.
type Store interface {
	Reader
	CreateExclusive(ctx context.Context, path string, data []byte) error
}
