package storage

import (
	"context"
	"errors"
	"fmt"

	"storefront-recipes/internal/pkg/common"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// BadgerStore 本地嵌入式後端，適合單機部署與開發
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore 開啟指定目錄的資料庫
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = &badgerLogger{logger: common.Logger.Sugar().With(zap.String("component", "badgerdb"))}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: opening badger db at %s: %w", path, err)
	}
	common.LogInfo("BadgerDB 已開啟", zap.String("path", path))
	return &BadgerStore{db: db}, nil
}

// Put 寫入（覆蓋既有值）；內容類型不保存
func (s *BadgerStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), data))
	})
	if err != nil {
		return fmt.Errorf("storage: badger put %s: %w", key, err)
	}
	return nil
}

// Get 讀取
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: badger get %s: %w", key, err)
	}
	return data, nil
}

// Close 關閉資料庫
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

type badgerLogger struct {
	logger *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{})   { l.logger.Errorf(f, v...) }
func (l *badgerLogger) Warningf(f string, v ...interface{}) { l.logger.Warnf(f, v...) }
func (l *badgerLogger) Infof(f string, v ...interface{})    { l.logger.Debugf(f, v...) }
func (l *badgerLogger) Debugf(f string, v ...interface{})   { l.logger.Debugf(f, v...) }
