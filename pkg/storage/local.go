package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type LocalStorage struct {
	basePath string
	baseURL  string
}

func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	err := os.MkdirAll(basePath, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}, nil
}

func (l *LocalStorage) Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error) {
	filePath := filepath.Join(l.basePath, request.Key)

	dir := filepath.Dir(filePath)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, request.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	url := l.generateURL(request.Key)

	return &UploadResponse{
		Key:      request.Key,
		URL:      url,
		Size:     size,
		Location: filePath,
	}, nil
}

func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	filePath := filepath.Join(l.basePath, key)
	return os.Remove(filePath)
}

func (l *LocalStorage) GetURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	// Local storage doesn't support expiring URLs
	return l.generateURL(key), nil
}

func (l *LocalStorage) FileExists(ctx context.Context, key string) (bool, error) {
	filePath := filepath.Join(l.basePath, key)
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func (l *LocalStorage) generateURL(key string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(l.baseURL, "/"), key)
}
