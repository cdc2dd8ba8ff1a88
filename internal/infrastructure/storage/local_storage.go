package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// Ensure LocalObjectStorage implements ObjectStorageService
var _ catalogapp.ObjectStorageService = (*LocalObjectStorage)(nil)

// LocalObjectStorage implements ObjectStorageService on the local filesystem.
// It is intended for development and single-node deployments. Upload and
// download URLs point back at the application's own media endpoints, which
// stream the files from disk.
type LocalObjectStorage struct {
	rootDir string
	baseURL string
}

// NewLocalObjectStorage creates a LocalObjectStorage rooted at rootDir.
// baseURL is the public prefix for download URLs (for example "/api/v1/media").
func NewLocalObjectStorage(rootDir, baseURL string) (*LocalObjectStorage, error) {
	if rootDir == "" {
		return nil, errors.New("storage root directory is required")
	}
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	if baseURL == "" {
		baseURL = "/media"
	}
	return &LocalObjectStorage{
		rootDir: rootDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// resolve maps a storage key to a path under the root, rejecting traversal
func (l *LocalObjectStorage) resolve(storageKey string) (string, error) {
	if storageKey == "" {
		return "", errors.New("storage key is required")
	}
	cleaned := filepath.Clean("/" + storageKey)
	if strings.Contains(cleaned, "..") {
		return "", errors.New("invalid storage key")
	}
	return filepath.Join(l.rootDir, cleaned), nil
}

// GenerateUploadURL returns a URL on the application's direct-upload endpoint.
// Local storage has no presigning, so the expiry is informational only.
func (l *LocalObjectStorage) GenerateUploadURL(
	ctx context.Context,
	storageKey, contentType string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	expiresAt := time.Now().Add(expiresIn)
	return l.baseURL + "/upload/" + storageKey, expiresAt, nil
}

// GenerateDownloadURL returns a URL on the application's media endpoint
func (l *LocalObjectStorage) GenerateDownloadURL(
	ctx context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = time.Hour
	}
	expiresAt := time.Now().Add(expiresIn)
	return l.baseURL + "/" + storageKey, expiresAt, nil
}

// DeleteObject removes the file for the given key.
// Deleting a missing object is not an error.
func (l *LocalObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	path, err := l.resolve(storageKey)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// ObjectExists reports whether a file exists for the given key
func (l *LocalObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	path, err := l.resolve(storageKey)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// Upload writes data to disk under the storage key
func (l *LocalObjectStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	path, err := l.resolve(storageKey)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	return nil
}

// Open returns the file contents for a storage key (for the media endpoint)
func (l *LocalObjectStorage) Open(storageKey string) ([]byte, error) {
	path, err := l.resolve(storageKey)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("object not found")
		}
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return data, nil
}
