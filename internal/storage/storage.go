// Package storage is the object-store port for sticker images. The disk
// backend serves development and single-node deployments; the interface is
// the seam for a hosted bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ObjectStorage stores uploaded images under bucket-relative paths and serves
// them at public URLs.
type ObjectStorage interface {
	Save(ctx context.Context, path string, contentType string, r io.Reader) (publicURL string, err error)
	Remove(ctx context.Context, path string) error
	PublicURL(path string) string
}

// DiskStorage writes objects under a local directory and serves them below a
// base URL (the directory is expected to be mounted as a static file root).
type DiskStorage struct {
	root    string
	baseURL string
}

// NewDiskStorage creates the root directory if needed. baseURL is the public
// prefix objects are reachable under, e.g. "http://localhost:8080/uploads".
func NewDiskStorage(root, baseURL string) (*DiskStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &DiskStorage{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *DiskStorage) Save(ctx context.Context, path string, contentType string, r io.Reader) (string, error) {
	clean, err := s.cleanPath(path)
	if err != nil {
		return "", err
	}

	full := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create object folder: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}

	return s.PublicURL(clean), nil
}

func (s *DiskStorage) Remove(ctx context.Context, path string) error {
	clean, err := s.cleanPath(path)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

func (s *DiskStorage) PublicURL(path string) string {
	return s.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// cleanPath rejects traversal outside the storage root.
func (s *DiskStorage) cleanPath(path string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean("/" + path))
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("invalid object path: %s", path)
	}
	return strings.TrimPrefix(clean, "/"), nil
}
