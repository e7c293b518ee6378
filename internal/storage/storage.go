// Package storage abstracts the blob stores incident CSVs and video clips
// live in: a local directory, AWS S3 (or S3-compatible stores) and Google
// Cloud Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned (wrapped) by Get when the object does not exist.
var ErrNotFound = errors.New("object not found")

// Getter reads whole objects by key.
type Getter interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Presigner issues time-limited GET URLs for objects.
type Presigner interface {
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}

// ObjectStore is a remote store that can both serve and sign objects.
type ObjectStore interface {
	Getter
	Presigner
}

// LocalStorage implements Getter using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(key string) (string, error) {
	p := filepath.Join(s.BaseDir, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.BaseDir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q escapes %s", key, s.BaseDir)
	}
	return p, nil
}

// Get reads the file stored under key.
func (s *LocalStorage) Get(ctx context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("local get %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("local get %s: %w", key, err)
	}
	return data, nil
}

// Put writes data under key, creating parent directories.
func (s *LocalStorage) Put(ctx context.Context, key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(p, data, 0o644)
}
