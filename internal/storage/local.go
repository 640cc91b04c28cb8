package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// FileStore keeps objects on the local filesystem under a base directory
type FileStore struct {
	baseDir string
}

func NewFileStore(baseDir string) (*FileStore, error) {
	// Ensure the base directory exists
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FileStore{baseDir: baseDir}, nil
}

// resolve maps an object path to a file under baseDir. Cleaning the path as
// if rooted keeps ".." segments from climbing out of baseDir.
func (s *FileStore) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}
	return filepath.Join(s.baseDir, clean), nil
}

// Open reads a file
func (s *FileStore) Open(ctx context.Context, path string) ([]byte, error) {
	filePath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		if errors.Is(err, syscall.ENOTDIR) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// CreateExclusive writes data to a temp file next to the target and then
// hard-links it into place. The link fails if the target exists, so only
// one writer wins and readers never see a partially written file.
func (s *FileStore) CreateExclusive(ctx context.Context, path string, data []byte) error {
	filePath, err := s.resolve(path)
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, path)
		}
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(filePath)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := os.Link(tmpName, filePath); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, path)
		}
		return fmt.Errorf("failed to link file: %w", err)
	}
	return nil
}
