// Package storage persists the recipes snapshot as a single JSON blob.
package storage

import (
	"context"
	"errors"
	"fmt"

	"storefront-recipes/internal/infrastructure/config"
)

// ErrBlobNotFound 指定的 key 不存在
var ErrBlobNotFound = errors.New("blob not found")

// ContentTypeJSON 快照內容類型
const ContentTypeJSON = "application/json"

// BlobStore 以 key 存取單一物件，寫入即完整取代
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Close() error
}

// Open 依設定建立對應的儲存後端
func Open(ctx context.Context, cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Backend {
	case "gcs":
		return NewGCSStore(ctx, cfg.Bucket)
	case "redis":
		return NewRedisStore(ctx, cfg.RedisURL)
	case "badger":
		return NewBadgerStore(cfg.BadgerPath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
