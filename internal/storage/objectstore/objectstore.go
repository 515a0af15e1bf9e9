package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"photo_commerce/internal/storage"
)

// BlobStorage is the private object store the pipeline writes to. Objects
// are addressed by the relative path `{gallery}/{purpose}/{name}` and are
// never exposed directly; reads go through the asset access broker.
type BlobStorage interface {
	Put(ctx context.Context, objectPath string, r io.Reader) (int64, error)
	Open(ctx context.Context, objectPath string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectPath string) error
	BaseDir() string
}

// LocalObjectStorage keeps objects on the local filesystem under a private
// base directory.
type LocalObjectStorage struct {
	baseDir string
}

func NewLocalObjectStorage(baseDir string) (*LocalObjectStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalObjectStorage{baseDir: baseDir}, nil
}

func (s *LocalObjectStorage) Put(ctx context.Context, objectPath string, r io.Reader) (int64, error) {
	fullPath, err := s.resolve(objectPath)
	if err != nil {
		return 0, err
	}

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return 0, fmt.Errorf("failed to create directories: %w", err)
		}
	}

	// Write to a temp file in the same directory and rename into place, so
	// the final path never holds a partially written object.
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create object file: %w", err)
	}
	tmpPath := tmp.Name()

	done := make(chan struct{})
	var size int64
	var copyErr error

	go func() {
		size, copyErr = io.Copy(tmp, r)
		close(done)
	}()

	select {
	case <-done:
		if copyErr != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
			return 0, fmt.Errorf("failed to write object: %w", copyErr)
		}
	case <-ctx.Done():
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return 0, ctx.Err()
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to write object: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to finalize object: %w", err)
	}

	return size, nil
}

func (s *LocalObjectStorage) Open(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := s.resolve(objectPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}

	return f, nil
}

func (s *LocalObjectStorage) Delete(ctx context.Context, objectPath string) error {
	fullPath, err := s.resolve(objectPath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return storage.ErrObjectNotFound
		}
		return err
	}

	return nil
}

func (s *LocalObjectStorage) BaseDir() string {
	return s.baseDir
}

// resolve maps an object path onto the base directory, rejecting traversal.
func (s *LocalObjectStorage) resolve(objectPath string) (string, error) {
	clean := filepath.Clean("/" + objectPath)
	if strings.Contains(objectPath, "..") {
		return "", fmt.Errorf("invalid object path %q", objectPath)
	}
	return filepath.Join(s.baseDir, clean), nil
}
