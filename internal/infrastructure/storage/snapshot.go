package storage

import (
	"context"
	"errors"
	"fmt"

	"storefront-recipes/internal/pkg/common"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// SnapshotRepository 以固定 key 讀寫整份食譜快照
type SnapshotRepository struct {
	store BlobStore
	key   string
}

// NewSnapshotRepository 創建快照倉庫
func NewSnapshotRepository(store BlobStore, key string) *SnapshotRepository {
	return &SnapshotRepository{store: store, key: key}
}

// SaveSnapshot 序列化並整份寫入（後寫者勝）
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, s *common.RecipesSnapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("storage: encoding snapshot: %w", err)
	}
	if err := r.store.Put(ctx, r.key, data, ContentTypeJSON); err != nil {
		return err
	}
	common.LogDebug("快照已寫入", zap.String("key", r.key), zap.Int("bytes", len(data)))
	return nil
}

// LoadSnapshot 讀取最近一次的快照；尚未生成時回傳 ErrSnapshotNotFound
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context) (*common.RecipesSnapshot, error) {
	data, err := r.store.Get(ctx, r.key)
	if errors.Is(err, ErrBlobNotFound) {
		return nil, common.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}

	var s common.RecipesSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("storage: decoding snapshot: %w", err)
	}
	return &s, nil
}
