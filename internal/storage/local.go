package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// LocalBackend implements image storage on the local filesystem. Presigned
// URLs point back at the server's storage passthrough routes.
type LocalBackend struct {
	baseURL    string // Server URL (e.g., "http://localhost:8080")
	uploadsDir string // Local directory for uploads (e.g., "./uploads")
	imagesDir  string // Subdirectory for images
}

// NewLocalBackend creates a local filesystem storage backend
func NewLocalBackend(baseURL, uploadsDir string) (*LocalBackend, error) {
	imagesDir := filepath.Join(uploadsDir, "images")

	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}

	return &LocalBackend{
		baseURL:    baseURL,
		uploadsDir: uploadsDir,
		imagesDir:  imagesDir,
	}, nil
}

// GeneratePresignedUploadURL generates an upload URL pointing to the server.
// The key travels in the query parameter so the upload handler knows where
// to save.
func (b *LocalBackend) GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error) {
	uploadToken := uuid.New().String()
	uploadURL := fmt.Sprintf("%s/api/v1/storage/upload/%s?key=%s", b.baseURL, uploadToken, key)
	return uploadURL, nil
}

// GeneratePresignedDownloadURL generates a download URL pointing to the server
func (b *LocalBackend) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	downloadURL := fmt.Sprintf("%s/api/v1/storage/download?key=%s", b.baseURL, key)
	return downloadURL, nil
}

// FileExists checks if file exists in the local filesystem
func (b *LocalBackend) FileExists(ctx context.Context, key string) (bool, int64, error) {
	info, err := os.Stat(filepath.Join(b.imagesDir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

// DeleteFile deletes a file from the local filesystem
func (b *LocalBackend) DeleteFile(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(b.imagesDir, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// SaveFile saves an uploaded file to the local filesystem
func (b *LocalBackend) SaveFile(key string, reader io.Reader) error {
	fullPath := filepath.Join(b.imagesDir, key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// ReadFile reads a file from the local filesystem
func (b *LocalBackend) ReadFile(key string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(b.imagesDir, key))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}
