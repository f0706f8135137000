package storage

import (
	"context"
	"io"
	"time"
)

// ProofStore holds transfer-proof images uploaded by sellers during
// settlement. Deletion is the compensating action when a settlement
// transaction aborts after the proof was stored.
type ProofStore interface {
	Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error)
	Delete(ctx context.Context, key string) error
	GetURL(ctx context.Context, key string, expiration time.Duration) (string, error)
	FileExists(ctx context.Context, key string) (bool, error)
}

type UploadRequest struct {
	Key          string            `json:"key"`
	Reader       io.Reader         `json:"-"`
	ContentType  string            `json:"content_type"`
	Size         int64             `json:"size"`
	Metadata     map[string]string `json:"metadata"`
	CacheControl string            `json:"cache_control"`
}

type UploadResponse struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	ETag     string `json:"etag"`
	Location string `json:"location"`
}
