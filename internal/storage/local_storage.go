package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/lexcase/lexcase-backend/internal/app/model"
)

// LocalStorage stores blobs on the local filesystem. Suitable for development
// and single-node deployments; locators are paths relative to the base dir.
type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

func (l *LocalStorage) Name() model.StorageBackendType {
	return model.StorageBackendLocal
}

func (l *LocalStorage) Put(ctx context.Context, data []byte, meta ObjectMeta) (string, error) {
	ext := filepath.Ext(meta.FileName)
	locator := fmt.Sprintf("%s%s", uuid.New().String(), ext)

	path := filepath.Join(l.baseDir, locator)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return locator, nil
}

func (l *LocalStorage) Get(ctx context.Context, locator string) ([]byte, error) {
	// Reject traversal outside the base dir
	if strings.Contains(locator, "..") || filepath.IsAbs(locator) {
		return nil, fmt.Errorf("invalid locator: %s", locator)
	}

	data, err := os.ReadFile(filepath.Join(l.baseDir, locator))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}
