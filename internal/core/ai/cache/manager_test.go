package cache

import (
	"context"
	"testing"
	"time"

	"storefront-recipes/internal/infrastructure/config"
	"storefront-recipes/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, maxSize int, ttl time.Duration) *CacheManager {
	t.Helper()
	m := NewManager(config.CacheConfig{Enabled: true, MaxSize: maxSize, TTL: ttl})
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestCacheManager_SetGet(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 10, time.Minute)

	_, err := m.Get(ctx, "traduce esto")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "traduce esto", `{"title":"Sopa"}`))

	val, err := m.Get(ctx, "traduce esto")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Sopa"}`, val)

	stats := m.GetStats()
	assert.EqualValues(t, 1, stats["hits"])
	assert.EqualValues(t, 1, stats["misses"])
}

func TestCacheManager_Expiry(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 10, time.Millisecond)

	require.NoError(t, m.Set(ctx, "p", "v"))
	time.Sleep(5 * time.Millisecond)

	_, err := m.Get(ctx, "p")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestCacheManager_EvictsLeastUsed(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 2, time.Minute)

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Set(ctx, "b", "2"))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", "3"))

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	val, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
}
