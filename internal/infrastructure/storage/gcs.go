package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCSStore Google Cloud Storage 後端
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore 以預設憑證建立 GCS 客戶端
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: creating gcs client: %w", err)
	}
	return NewGCSStoreWithClient(client, bucket), nil
}

// NewGCSStoreWithClient 使用既有客戶端
func NewGCSStoreWithClient(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

// Put 寫入物件；Close 成功才算寫入完成
func (s *GCSStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return fmt.Errorf("storage: writing gs://%s/%s: %w", s.bucket, key, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("storage: committing gs://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// Get 讀取物件
func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("storage: opening gs://%s/%s: %w", s.bucket, key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("storage: reading gs://%s/%s: %w", s.bucket, key, err)
	}
	return data, nil
}

// Close 關閉客戶端
func (s *GCSStore) Close() error {
	return s.client.Close()
}
