package lake

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FilesystemBlobStore stores lake blobs under a local root directory,
// mirroring the lake key layout on disk.
type FilesystemBlobStore struct {
	root string
}

// NewFilesystemBlobStore creates the root directory and returns a store.
func NewFilesystemBlobStore(root string) (*FilesystemBlobStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lake root: %w", err)
	}
	return &FilesystemBlobStore{root: root}, nil
}

// Root returns the lake root directory.
func (s *FilesystemBlobStore) Root() string {
	return s.root
}

func (s *FilesystemBlobStore) fullPath(path string) string {
	return filepath.Join(s.root, filepath.FromSlash(path))
}

// Put writes a blob, creating parent directories as needed.
func (s *FilesystemBlobStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	full := s.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	return nil
}

// Get reads the blob at the path.
func (s *FilesystemBlobStore) Get(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(s.fullPath(path))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, path)
	}
	return data, err
}

// List returns sorted lake keys under the prefix.
func (s *FilesystemBlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	paths := make([]string, 0)
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			paths = append(paths, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// Delete removes the blob at the path. Deleting a missing blob is a no-op.
func (s *FilesystemBlobStore) Delete(ctx context.Context, path string) error {
	err := os.Remove(s.fullPath(path))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
