package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCPStorage struct {
	client    *gcs.Client
	bucket    string
	cdnDomain string
}

func NewGCPStorage(credentialsFile, bucket, cdnDomain string) (*GCPStorage, error) {
	ctx := context.Background()

	var client *gcs.Client
	var err error

	if credentialsFile != "" {
		client, err = gcs.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		client, err = gcs.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCPStorage{
		client:    client,
		bucket:    bucket,
		cdnDomain: cdnDomain,
	}, nil
}

func (g *GCPStorage) Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error) {
	bucket := g.client.Bucket(g.bucket)
	obj := bucket.Object(request.Key)

	writer := obj.NewWriter(ctx)
	writer.ContentType = request.ContentType

	if request.CacheControl != "" {
		writer.CacheControl = request.CacheControl
	}

	if len(request.Metadata) > 0 {
		writer.Metadata = request.Metadata
	}

	size, err := io.Copy(writer, request.Reader)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to upload to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize GCS upload: %w", err)
	}

	url := g.generateURL(request.Key)

	return &UploadResponse{
		Key:  request.Key,
		URL:  url,
		Size: size,
	}, nil
}

func (g *GCPStorage) Delete(ctx context.Context, key string) error {
	bucket := g.client.Bucket(g.bucket)
	obj := bucket.Object(key)

	err := obj.Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete from GCS: %w", err)
	}

	return nil
}

func (g *GCPStorage) GetURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	bucket := g.client.Bucket(g.bucket)

	opts := &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(expiration),
	}

	url, err := bucket.SignedURL(key, opts)
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}

	return url, nil
}

func (g *GCPStorage) FileExists(ctx context.Context, key string) (bool, error) {
	bucket := g.client.Bucket(g.bucket)
	obj := bucket.Object(key)

	_, err := obj.Attrs(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (g *GCPStorage) generateURL(key string) string {
	if g.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", g.cdnDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, key)
}
