// internal/storage/local.go
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps blobs on the local filesystem under a root directory.
// This is the default backend: the scoring processor reads video files from
// the same disk, so no transfer step is needed.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) path(dir, name string) (string, error) {
	clean := filepath.Join(dir, name)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("invalid path %q", clean)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *LocalStore) Save(ctx context.Context, dir, name string, r io.Reader, size int64, contentType string) (string, error) {
	full, err := s.path(dir, name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return filepath.ToSlash(filepath.Join(dir, name)), nil
}

func (s *LocalStore) Fetch(ctx context.Context, dir, name, destPath string) error {
	full, err := s.path(dir, name)
	if err != nil {
		return err
	}
	src, err := os.Open(full)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}
	return nil
}

func (s *LocalStore) Delete(ctx context.Context, dir, name string) (bool, error) {
	full, err := s.path(dir, name)
	if err != nil {
		return false, err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete file: %w", err)
	}
	return true, nil
}

func (s *LocalStore) Exists(ctx context.Context, dir, name string) (bool, error) {
	full, err := s.path(dir, name)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *LocalStore) List(ctx context.Context, dir string) ([]string, error) {
	full := filepath.Join(s.root, dir)
	entries, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (s *LocalStore) LocalPath(dir, name string) (string, bool) {
	full, err := s.path(dir, name)
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return "", false
	}
	return abs, true
}

// Root returns the absolute store root, used by the server to expose blobs
// as static files.
func (s *LocalStore) Root() string {
	abs, err := filepath.Abs(s.root)
	if err != nil {
		return s.root
	}
	return abs
}
